package errors_test

import (
	"testing"

	domainerrors "evroute/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domainerrors.Kind
	}{
		{"malformed", domainerrors.ErrMalformedInstance, domainerrors.KindMalformedInstance},
		{"wrapped infeasible", errors.Wrap(domainerrors.ErrInfeasible.WithDetails("load"), "savings"), domainerrors.KindInfeasible},
		{"timeout", domainerrors.ErrTimeout.WithDetailsf("after %d iterations", 3), domainerrors.KindTimeout},
		{"plain", errors.New("boom"), domainerrors.KindUnknown},
		{"nil", nil, domainerrors.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domainerrors.KindOf(tt.err))
		})
	}
}

func TestSolveError_IsMatchesKindAfterDetails(t *testing.T) {
	err := errors.Wrap(domainerrors.ErrInfeasible.WithDetails("battery"), "nearest_neighbor")

	assert.True(t, domainerrors.IsInfeasible(err))
	assert.ErrorIs(t, err, domainerrors.ErrInfeasible)
	assert.False(t, domainerrors.IsTimeout(err))
	assert.False(t, domainerrors.IsMalformed(err))
}

func TestToErrorInfo(t *testing.T) {
	assert.Nil(t, domainerrors.ToErrorInfo(nil))

	info := domainerrors.ToErrorInfo(errors.Wrap(domainerrors.ErrTimeout.WithDetails("grasp"), "dispatch"))
	require.NotNil(t, info)
	assert.Equal(t, "TIMEOUT", info.Code)
	assert.Equal(t, "time budget exhausted", info.Message)
	assert.Contains(t, info.Details, "grasp")

	info = domainerrors.ToErrorInfo(errors.New("disk full"))
	assert.Equal(t, "UNKNOWN", info.Code)
	assert.Equal(t, "disk full", info.Message)
}
