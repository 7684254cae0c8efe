package stoplist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewManagerLowercases(t *testing.T) {
	m := NewManager([]string{"The", "A"})
	assert.True(t, m.IsStop("the"))
	assert.True(t, m.IsStop("a"))
	assert.False(t, m.IsStop("checkin"))
}

func TestAddLowercases(t *testing.T) {
	m := NewManager(nil)
	m.Add("Wifi")
	assert.True(t, m.IsStop("wifi"))
	assert.Equal(t, 1, m.Len())
}

func TestNewEnglishExtras(t *testing.T) {
	m := NewEnglish("airbnb")
	assert.True(t, m.IsStop("when"))
	assert.True(t, m.IsStop("airbnb"))
	assert.Equal(t, len(English)+1, m.Len())
}

func TestRatio(t *testing.T) {
	m := NewEnglish()
	assert.InDelta(t, 0.5, m.Ratio([]string{"the", "pool", "is", "warm"}), 1e-9)
	assert.Zero(t, m.Ratio(nil))
}
