package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampDragMinute(t *testing.T) {
	assert.Equal(t, 5, ClampDragMinute(0, -1000))
	assert.Equal(t, 1435, ClampDragMinute(0, 2000))
	assert.Equal(t, 725, ClampDragMinute(360, 725))
	assert.Equal(t, 365, ClampDragMinute(360, 360))
}

func TestSnapDelta(t *testing.T) {
	// 1440 px wide: one pixel per minute.
	assert.Equal(t, 0, SnapDelta(2, 1440))
	assert.Equal(t, 5, SnapDelta(3, 1440))
	assert.Equal(t, 60, SnapDelta(60, 1440))
	assert.Equal(t, -60, SnapDelta(-61, 1440))
	assert.Equal(t, 360, SnapDelta(100, 400))
}

func TestDragSession_RecomputesFromStart(t *testing.T) {
	day := mustParse(t, "00:00/18 06:00/21 22:00/16")
	s, err := BeginDrag(day, 1)
	require.NoError(t, err)
	assert.Equal(t, 360, s.StartMinute())

	for i := 0; i < 3; i++ {
		m, err := s.Move(60, 1440)
		require.NoError(t, err)
		assert.Equal(t, 420, m, "same displacement is idempotent")
	}
	m, err := s.Move(-30, 1440)
	require.NoError(t, err)
	assert.Equal(t, 330, m)
	assert.Equal(t, 330, s.Minute())

	got, err := Format(day)
	require.NoError(t, err)
	assert.Equal(t, "00:00/18 05:30/21 22:00/16", got)
}

func TestDragSession_ClampsToBounds(t *testing.T) {
	day := mustParse(t, "00:00/18 06:00/21")
	s, err := BeginDrag(day, 1)
	require.NoError(t, err)

	m, err := s.Move(-100000, 1440)
	require.NoError(t, err)
	assert.Equal(t, 5, m)

	m, err = s.Move(100000, 1440)
	require.NoError(t, err)
	assert.Equal(t, LastStartMinute, m)
}

func TestDragSession_PastNextNeighbourReorders(t *testing.T) {
	day := mustParse(t, "00:00/18 06:00/21 08:00/19")
	s, err := BeginDrag(day, 1)
	require.NoError(t, err)

	_, err = s.Move(240, 1440) // 06:00 -> 10:00, past 08:00
	require.NoError(t, err)
	_, err = s.Move(300, 1440) // still the same transition
	require.NoError(t, err)

	got, err := Format(day)
	require.NoError(t, err)
	assert.Equal(t, "00:00/18 08:00/19 11:00/21", got)
}

func TestBeginDrag_Rejects(t *testing.T) {
	day := mustParse(t, "00:00/18 06:00/21")
	_, err := BeginDrag(day, 0)
	assert.ErrorIs(t, err, ErrInvariant)
	_, err = BeginDrag(day, 2)
	assert.ErrorIs(t, err, ErrInvariant)

	crowded := mustParse(t, "00:00/18 23:55/21 23:58/20")
	_, err = BeginDrag(crowded, 2)
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestDragSession_AfterEndOrDelete(t *testing.T) {
	day := mustParse(t, "00:00/18 06:00/21")
	s, err := BeginDrag(day, 1)
	require.NoError(t, err)

	_, err = s.Move(10, 0)
	assert.ErrorIs(t, err, ErrInvariant)

	require.NoError(t, day.DeleteTransition(1))
	_, err = s.Move(10, 1440)
	assert.ErrorIs(t, err, ErrInvariant)

	s.End()
	assert.True(t, s.Ended())
	_, err = s.Move(10, 1440)
	assert.ErrorIs(t, err, ErrInvariant)
}
