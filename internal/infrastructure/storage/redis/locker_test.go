package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bsm/redislock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
)

type fakeObtainer struct {
	key string
	ttl time.Duration
	opt *redislock.Options
	err error
}

func (f *fakeObtainer) Obtain(_ context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error) {
	f.key, f.ttl, f.opt = key, ttl, opt
	return nil, f.err
}

func TestRegisterLocker_BusyWhenNotObtained(t *testing.T) {
	fake := &fakeObtainer{err: redislock.ErrNotObtained}
	l := newRegisterLocker(fake, Options{TTL: 5 * time.Second})
	regID := id.New()

	release, err := l.Lock(context.Background(), regID)
	require.Error(t, err)
	assert.Nil(t, release)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRegisterBusy, appErr.Code)

	assert.Equal(t, "cash:register:"+regID.String(), fake.key)
	assert.Equal(t, 5*time.Second, fake.ttl)
	require.NotNil(t, fake.opt)
	assert.NotNil(t, fake.opt.RetryStrategy)
}

func TestRegisterLocker_BackendError(t *testing.T) {
	backend := errors.New("dial tcp: connection refused")
	l := newRegisterLocker(&fakeObtainer{err: backend}, Options{})

	_, err := l.Lock(context.Background(), id.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, backend)
	_, ok := apperror.AsAppError(err)
	assert.False(t, ok)
}

func TestNewRegisterLocker_Defaults(t *testing.T) {
	l := newRegisterLocker(&fakeObtainer{}, Options{})
	assert.Equal(t, 10*time.Second, l.ttl)
	assert.Equal(t, 3*time.Second, l.wait)
}
