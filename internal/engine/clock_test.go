package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClock_NowAdvances(t *testing.T) {
	c := NewClock()

	before := c.Now()
	c.Sleep(time.Millisecond)
	after := c.Now()

	assert.True(t, after.After(before), "wall clock should advance across Sleep")
}

func TestSystemClock_SleepNonPositiveReturns(t *testing.T) {
	c := NewClock()

	start := time.Now()
	c.Sleep(0)
	c.Sleep(-time.Hour)

	assert.Less(t, time.Since(start), time.Second)
}
