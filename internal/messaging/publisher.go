package messaging

import (
	"context"
	"fmt"

	"billplan/internal/logger"
)

// PublishCategoryDeletion publishes a category-deletion event. Publication is
// fire-and-forget: no acknowledgment is consumed and the transport owns any
// retry behavior.
func (c *Client) PublishCategoryDeletion(ctx context.Context, msg *CategoryDeletionMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, c.deletionQueue, body); err != nil {
		return err
	}

	logger.Get().Infow("published category deletion event",
		"username", msg.Username,
		"deleted_category", msg.DeletedCategoryName,
		"replacement_category", msg.ReplacementCategoryName,
		"queue", c.deletionQueue,
	)
	return nil
}
