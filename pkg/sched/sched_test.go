package sched_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renovpro/devis-api/pkg/sched"
)

func TestTask_ExecuteApresDelai(t *testing.T) {
	var fired atomic.Int32
	task := sched.New(10*time.Millisecond, func() { fired.Add(1) })
	task.Start()

	require.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, time.Millisecond)
}

func TestTask_StartReplanifie(t *testing.T) {
	var fired atomic.Int32
	task := sched.New(20*time.Millisecond, func() { fired.Add(1) })

	// Rafale de Start : seule la dernière planification tire.
	for i := 0; i < 5; i++ {
		task.Start()
		time.Sleep(5 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestTask_Cancel(t *testing.T) {
	var fired atomic.Int32
	task := sched.New(10*time.Millisecond, func() { fired.Add(1) })
	task.Start()
	task.Cancel()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestTask_CancelSansStart(t *testing.T) {
	task := sched.New(time.Millisecond, func() { t.Fatal("ne doit pas tirer") })
	task.Cancel() // sans effet, pas de panique
	time.Sleep(10 * time.Millisecond)
}

func TestTask_FlushExecuteImmediatement(t *testing.T) {
	var fired atomic.Int32
	task := sched.New(time.Hour, func() { fired.Add(1) })
	task.Start()
	task.Flush()

	assert.Equal(t, int32(1), fired.Load())
}

func TestTask_FlushSansPlanification(t *testing.T) {
	var fired atomic.Int32
	task := sched.New(time.Millisecond, func() { fired.Add(1) })
	task.Flush()
	assert.Equal(t, int32(0), fired.Load())
}
