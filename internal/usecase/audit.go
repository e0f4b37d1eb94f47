package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 管理者操作の監査ログ。変更と同じトランザクションで書く
func writeAudit(
	ctx context.Context,
	r repo.TxRepos,
	clock Clock,
	actorID int64,
	action model.AuditAction,
	resourceType model.AuditResourceType,
	resourceID int64,
	detail map[string]any,
) error {
	var body string
	if len(detail) > 0 {
		b, err := json.Marshal(detail)
		if err != nil {
			return Internal(fmt.Errorf("marshal audit detail: %w", err))
		}
		body = string(b)
	}

	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Detail:       body,
		CreatedAt:    clock.Now(),
	}); err != nil {
		return Internal(err)
	}
	return nil
}
