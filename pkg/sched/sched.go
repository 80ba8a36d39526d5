package sched

import (
	"sync"
	"time"
)

// Task tâche planifiée annulable, avec cycle de vie explicite Start/Cancel.
// Utilisée pour débouncer les écritures (sauvegarde différée d'un document en
// cours d'édition) : chaque Start replanifie l'exécution, seule la dernière
// planification court.
type Task struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
}

// New construit une tâche qui exécutera fn après delay une fois démarrée.
func New(delay time.Duration, fn func()) *Task {
	return &Task{delay: delay, fn: fn}
}

// Start (re)planifie l'exécution : tout déclenchement en attente est annulé
// et le délai repart de zéro.
func (t *Task) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.delay, t.fn)
}

// Cancel annule le déclenchement en attente, s'il y en a un.
// Sans effet si la tâche n'a pas été démarrée ou a déjà tiré.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Flush annule la planification en attente et exécute fn immédiatement si un
// déclenchement était dû. Utilisé à la fermeture d'une session d'édition pour
// ne pas perdre la dernière écriture différée.
func (t *Task) Flush() {
	t.mu.Lock()
	pending := t.timer != nil && t.timer.Stop()
	t.timer = nil
	t.mu.Unlock()
	if pending {
		t.fn()
	}
}
