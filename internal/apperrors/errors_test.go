package apperrors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xpanvictor/xarvis/internal/apperrors"
)

func TestKindsAreDistinguishableByIs(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind apperrors.Kind
	}{
		{"validation", apperrors.Validation("bad input"), apperrors.KindValidation},
		{"unauthorized", apperrors.Unauthorized(), apperrors.KindUnauthorized},
		{"not_found", apperrors.NotFound(), apperrors.KindNotFound},
		{"conflict", apperrors.Conflict(), apperrors.KindConflict},
		{"upstream_transient", apperrors.UpstreamTransient(errors.New("db down")), apperrors.KindUpstreamTransient},
		{"upstream_permanent", apperrors.UpstreamPermanent(errors.New("bad address")), apperrors.KindUpstreamPermanent},
		{"deadline", apperrors.DeadlineExceeded(), apperrors.KindDeadlineExceeded},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.True(t, apperrors.Is(c.err, c.kind))
			kind, ok := apperrors.KindOf(c.err)
			assert.True(t, ok)
			assert.Equal(t, c.kind, kind)
		})
	}
}

func TestIsReturnsFalseForUnrelatedErrors(t *testing.T) {
	assert.False(t, apperrors.Is(errors.New("plain"), apperrors.KindNotFound))
}

func TestUpstreamTransientWrapsUnderlyingError(t *testing.T) {
	underlying := errors.New("connection refused")
	wrapped := apperrors.UpstreamTransient(underlying)
	assert.True(t, errors.Is(wrapped, underlying))
}
