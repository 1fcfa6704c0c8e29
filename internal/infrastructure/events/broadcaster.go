// Package events implementa el Notifier del core como un broadcaster
// in-process: los suscriptores reciben los eventos por canales con buffer y
// la publicación nunca bloquea al que escribe stock.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/barratec/barra-api/internal/application/inventory"
	"github.com/barratec/barra-api/internal/domain/entity"
)

// Tipos de evento publicados.
const (
	EventStockChanged    = "stock.changed"
	EventMovementCreated = "movement.created"
	EventProcessChanged  = "process.changed"
)

// Event un evento lógico del core.
type Event struct {
	Type      string                    `json:"type"`
	ProductID string                    `json:"product_id,omitempty"`
	Reason    string                    `json:"reason,omitempty"`
	Movement  *entity.StockMovement     `json:"movement,omitempty"`
	Process   *entity.ProductionProcess `json:"process,omitempty"`
	At        time.Time                 `json:"at"`
}

var _ inventory.Notifier = (*Broadcaster)(nil)

// Broadcaster fan-out de eventos a suscriptores locales. Si el buffer de un
// suscriptor está lleno el evento se descarta para ese suscriptor y se deja
// constancia en el log; los listados siempre pueden re-consultar el estado.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	buffer int
	log    zerolog.Logger
	now    func() time.Time
}

// NewBroadcaster construye el broadcaster. buffer <= 0 usa 32.
func NewBroadcaster(buffer int, log zerolog.Logger) *Broadcaster {
	if buffer <= 0 {
		buffer = 32
	}
	return &Broadcaster{
		subs:   make(map[int]chan Event),
		buffer: buffer,
		log:    log,
		now:    time.Now,
	}
}

// Subscribe registra un suscriptor y devuelve su canal junto con la función
// para darse de baja. El canal se cierra al cancelar.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// StockChanged publica que cambió el stock de un producto.
func (b *Broadcaster) StockChanged(productID, reason string) {
	b.publish(Event{Type: EventStockChanged, ProductID: productID, Reason: reason})
}

// MovementCreated publica un asiento nuevo.
func (b *Broadcaster) MovementCreated(productID string, movement *entity.StockMovement) {
	b.publish(Event{Type: EventMovementCreated, ProductID: productID, Movement: movement})
}

// ProcessChanged publica un cambio de estado de proceso.
func (b *Broadcaster) ProcessChanged(process *entity.ProductionProcess) {
	b.publish(Event{Type: EventProcessChanged, Process: process})
}

func (b *Broadcaster) publish(e Event) {
	e.At = b.now()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.log.Debug().Int("subscriber", id).Str("type", e.Type).Msg("evento descartado: buffer lleno")
		}
	}
}

// Close da de baja todos los suscriptores.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
