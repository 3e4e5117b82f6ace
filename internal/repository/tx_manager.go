package repository

import "context"

// トランザクション内で使えるリポジトリの束。
// 注文作成（注文＋明細）と遷移（注文＋履歴）が使う。
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Audits() OrderAuditRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// 複数店舗チェックアウトは店舗ごとに別々のWithinTxを張る（店舗間は非アトミック）。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
