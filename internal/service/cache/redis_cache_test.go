package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobEscaper(t *testing.T) {
	assert.Equal(t, `salescast:forecast:Stik Bawang:`, globEscaper.Replace(ForecastKeyPrefix("Stik Bawang")))
	assert.Equal(t, `salescast:forecast:a\*b\[1\]:`, globEscaper.Replace(ForecastKeyPrefix("a*b[1]")))
	assert.Equal(t, `x\\y\?`, globEscaper.Replace(`x\y?`))
}

func TestNewRedisCacheDefaultTimeout(t *testing.T) {
	rc := NewRedisCache(RedisConfig{Addr: "localhost:6379"})
	defer rc.Close()
	assert.Equal(t, redisOpTimeout, rc.opTimeout)
}
