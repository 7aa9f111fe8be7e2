package worker

import (
	"github.com/spec-kit/sla-compliance-service/internal/service"
)

// StartNotifier registers event subscribers at boot.
func StartNotifier(notifier *service.NotifierService) {
	if notifier == nil {
		return
	}
	notifier.RegisterHandlers()
}
