package notify

import (
	"encoding/json"
	"sync"
	"time"

	"starfruit/internal/domain/lifecycle"
	"starfruit/internal/domain/model"

	"github.com/rs/zerolog/log"
)

// 顧客に見せる通知。文言は画面でそのまま出すポルトガル語。
type Notification struct {
	OrderID   string              `json:"order_id"`
	Milestone lifecycle.Milestone `json:"milestone"`
	Message   string              `json:"message"`
	At        time.Time           `json:"at"`
}

var milestoneMessages = map[lifecycle.Milestone]string{
	lifecycle.MilestoneReady:           "Seu pedido está pronto",
	lifecycle.MilestoneGoingToStore:    "Entregador a caminho da loja",
	lifecycle.MilestoneAtStore:         "Entregador chegou à loja",
	lifecycle.MilestoneGoingToCustomer: "Seu pedido saiu para entrega",
	lifecycle.MilestoneDelivered:       "Pedido entregue",
}

// Hubは顧客IDごとの購読チャネルに節目通知をファンアウトする。
// 節目はold/newイメージの差分から検出するので、同じ行への無関係な更新では発火しない。
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan Notification
	nextID int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan Notification)}
}

// Subscribeは顧客IDに紐づく通知チャネルと解除関数を返す。
// 解除後のチャネルはcloseされる。画面を離れたら必ず解除すること。
func (h *Hub) Subscribe(customerID string) (<-chan Notification, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Notification, 8)
	if h.subs[customerID] == nil {
		h.subs[customerID] = make(map[int]chan Notification)
	}
	id := h.nextID
	h.nextID++
	h.subs[customerID][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if m, ok := h.subs[customerID]; ok {
			if c, ok := m[id]; ok {
				delete(m, id)
				close(c)
			}
			if len(m) == 0 {
				delete(h.subs, customerID)
			}
		}
	}
	return ch, cancel
}

// Dispatchは1回の遷移につき最大1通を該当顧客の購読者へ送る。
// 受信が追いつかない購読者への送信は捨てる（古い画面に溜め込まない）。
func (h *Hub) Dispatch(old, new model.Order) {
	ms, ok := lifecycle.DetectMilestone(old, new)
	if !ok {
		return
	}

	n := Notification{
		OrderID:   new.ID,
		Milestone: ms,
		Message:   milestoneMessages[ms],
		At:        time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[new.CustomerID] {
		select {
		case ch <- n:
		default:
		}
	}
}

// HandleEventはrabbitコンシューマから呼ばれる。
func (h *Hub) HandleEvent(rk string, body []byte) error {
	var ev OrderChangedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		log.Warn().Str("routing_key", rk).Msg("discarding malformed order event")
		return nil
	}
	h.Dispatch(ev.Old, ev.New)
	return nil
}
