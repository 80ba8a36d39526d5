package retry

import (
	"context"
	"errors"
	"time"
)

// Policy politique de réexécution pour les appels externes : nombre de
// tentatives, délai de base (doublé à chaque tentative) et timeout par tentative.
// Valeur zéro inutilisable ; construire via une configuration explicite.
type Policy struct {
	MaxAttempts int           // tentatives au total (>= 1)
	BaseDelay   time.Duration // délai avant la 2e tentative ; doublé ensuite
	Timeout     time.Duration // timeout appliqué à chaque tentative (0 = aucun)
}

// ErrTimeout signale qu'une tentative a dépassé le timeout de la politique.
// Distinct des autres échecs pour que l'appelant puisse le classifier.
var ErrTimeout = errors.New("retry: timeout de la tentative dépassé")

// Do exécute op jusqu'à MaxAttempts fois avec backoff exponentiel.
// Chaque tentative reçoit un contexte borné par Timeout. Le dépassement du
// timeout d'une tentative est normalisé en ErrTimeout (enveloppé avec la cause).
// L'annulation du contexte parent interrompt immédiatement les attentes.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := p.BaseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		attemptCtx := ctx
		cancel := func() {}
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		err := op(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		// Timeout de tentative (pas du parent) -> ErrTimeout
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = errors.Join(ErrTimeout, err)
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		if !sleep(ctx, delay) {
			return ctx.Err()
		}
		delay *= 2
	}
	return lastErr
}

// sleep attend d pendant au plus la durée de vie du contexte.
// Renvoie false si le contexte a été annulé pendant l'attente.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// IsTimeout indique si err provient d'un timeout de tentative.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
