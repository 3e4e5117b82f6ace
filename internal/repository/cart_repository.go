package repository

import "context"

// カートはユーザーごとに1つのJSONスナップショットとして保存する。
type CartRepository interface {
	// 見つからない場合は(nil, false, nil)
	LoadSnapshot(ctx context.Context, userID string) ([]byte, bool, error)
	SaveSnapshot(ctx context.Context, userID string, data []byte) error
	DeleteSnapshot(ctx context.Context, userID string) error
}
