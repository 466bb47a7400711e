package watch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_ScheduleCron(t *testing.T) {
	t.Run("returns job id for valid cron", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		id, err := s.ScheduleCron("sweep", "0 */4 * * *", func() {})
		require.NoError(t, err)
		require.NotEmpty(t, id)
	})

	t.Run("rejects invalid cron", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		_, err = s.ScheduleCron("sweep", "this is not a cron", func() {})
		require.Error(t, err)
	})
}

func TestScheduler_ScheduleEvery(t *testing.T) {
	t.Run("runs the task", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		ran := make(chan struct{}, 1)
		id, err := s.ScheduleEvery("tick", 20*time.Millisecond, func() {
			select {
			case ran <- struct{}{}:
			default:
			}
		})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		s.Start(context.Background())
		select {
		case <-ran:
		case <-time.After(5 * time.Second):
			t.Fatal("scheduled task did not run")
		}
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		_, err = s.ScheduleEvery("tick", 0, func() {})
		require.Error(t, err)
	})
}

func TestValidateSchedule(t *testing.T) {
	require.NoError(t, ValidateSchedule("*/15 * * * *"))
	require.Error(t, ValidateSchedule("every tuesday"))
	require.Error(t, ValidateSchedule("* * * * * *"))
}
