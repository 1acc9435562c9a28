package notification

import (
	"context"
	"fmt"
	"time"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

// LoggingNotifier is a Notifier implementation that only logs completion
// notifications. Actual delivery (mail, chat, webhook) is a deployment
// concern layered on top of this port.
type LoggingNotifier struct{}

// NewLoggingNotifier creates a new instance of LoggingNotifier.
func NewLoggingNotifier() port.Notifier {
	logger.Infof("Notification: Initializing Logging Notifier.")
	return &LoggingNotifier{}
}

// NotifyBatchCompletion logs that a batch reached a terminal status.
func (n *LoggingNotifier) NotifyBatchCompletion(ctx context.Context, batch *model.Batch) {
	duration := time.Duration(0)
	if batch.SubmittedTime != nil && batch.CompletedTime != nil {
		duration = batch.CompletedTime.Sub(*batch.SubmittedTime)
	}

	message := fmt.Sprintf(
		"Batch Notification: Batch '%s' (ID: %s, Type: %s) finished with Status: %s. Duration: %s",
		batch.Name,
		batch.ID,
		batch.BatchType,
		batch.Status,
		duration,
	)

	if batch.Status == model.BatchStatusCompleted {
		logger.Infof("%s", message)
	} else {
		logger.Warnf("%s", message)
	}
}

var _ port.Notifier = (*LoggingNotifier)(nil)
