// eventbus/simulated.go
package eventbus

import (
	"context"
	"math/rand"
	"time"
)

// Товары, по которым симулируются котировки
var simulatedCommodities = []string{"wheat", "corn", "copper", "crude-oil", "aluminium", "soybean"}

// Статусы сделок и отгрузок для симулированных событий
var simulatedDealStatuses = []string{"negotiation", "contract_signed", "in_transit", "completed"}
var simulatedShipmentStatuses = []string{"loading", "departed", "customs", "delivered"}
var simulatedLocations = []string{"Rotterdam", "Singapore", "Houston", "Shanghai", "Santos"}

// SimulatedSource - симулированный источник рыночных событий.
// Заменяет реальный фид в разработке: после задержки установления
// соединения эмитирует случайные события со случайным интервалом
// в заданных границах.
type SimulatedSource struct {
	MinInterval time.Duration
	MaxInterval time.Duration

	// Задержка установления соединения
	ConnectDelay time.Duration

	rng *rand.Rand
}

// NewSimulatedSource создает симулированный источник с границами
// интервала эмиссии
func NewSimulatedSource(minInterval, maxInterval time.Duration) *SimulatedSource {
	return &SimulatedSource{
		MinInterval:  minInterval,
		MaxInterval:  maxInterval,
		ConnectDelay: 500 * time.Millisecond,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run эмитирует случайные события до отмены контекста
func (s *SimulatedSource) Run(ctx context.Context, ready func(), emit func(Event)) error {
	// Имитируем задержку установления соединения
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.ConnectDelay):
	}
	ready()

	for {
		interval := s.MinInterval
		if s.MaxInterval > s.MinInterval {
			interval += time.Duration(s.rng.Int63n(int64(s.MaxInterval - s.MinInterval)))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
			emit(s.randomEvent())
		}
	}
}

// randomEvent генерирует случайное событие одного из рыночных видов
func (s *SimulatedSource) randomEvent() Event {
	switch s.rng.Intn(5) {
	case 0:
		price := 100 + s.rng.Float64()*900
		return NewEvent(EventPriceUpdated, PriceUpdate{
			Commodity: simulatedCommodities[s.rng.Intn(len(simulatedCommodities))],
			Price:     price,
			Change:    (s.rng.Float64() - 0.5) * 10,
		})
	case 1:
		return NewEvent(EventDealUpdated, DealUpdate{
			DealID: 1000 + s.rng.Intn(9000),
			Status: simulatedDealStatuses[s.rng.Intn(len(simulatedDealStatuses))],
		})
	case 2:
		return NewEvent(EventShipmentUpdated, ShipmentUpdate{
			ShipmentID: 1000 + s.rng.Intn(9000),
			Status:     simulatedShipmentStatuses[s.rng.Intn(len(simulatedShipmentStatuses))],
			Location:   simulatedLocations[s.rng.Intn(len(simulatedLocations))],
		})
	case 3:
		return NewEvent(EventPaymentReceived, PaymentNotification{
			DealID:   1000 + s.rng.Intn(9000),
			Amount:   float64(s.rng.Intn(500000)) / 100,
			Currency: "USD",
		})
	default:
		return NewEvent(EventDocumentUploaded, DocumentNotification{
			DealID:   1000 + s.rng.Intn(9000),
			FileName: "contract.pdf",
		})
	}
}
