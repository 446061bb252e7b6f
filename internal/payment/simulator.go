package payment

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/application"
)

// Simulator accepts every disbursement. It is used when no gateway is configured.
// Repeating a disbursement for the same application returns the first reference.
type Simulator struct {
	mu   sync.Mutex
	refs map[uuid.UUID]string
}

func NewSimulator() *Simulator {
	return &Simulator{refs: make(map[uuid.UUID]string)}
}

func (s *Simulator) Disburse(ctx context.Context, d application.Disbursement) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ref, ok := s.refs[d.ApplicationID]; ok {
		return ref, nil
	}

	ref := "sim_" + uuid.NewString()
	s.refs[d.ApplicationID] = ref

	slog.Info("simulated disbursement", "urn", d.URN, "amount", d.Amount, "reference", ref)

	return ref, nil
}
