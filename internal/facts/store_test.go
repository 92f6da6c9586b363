package facts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	f, ok := Lookup("mars")
	require.True(t, ok)
	assert.Equal(t, "space", f.Category)
	assert.Contains(t, f.Text, "Red Planet")

	f, ok = Lookup("  T-Rex  ")
	require.True(t, ok)
	assert.Equal(t, "dinosaurs", f.Category)

	_, ok = Lookup("unicorns")
	assert.False(t, ok)
}

func TestCategoryByName(t *testing.T) {
	c, ok := CategoryByName("ocean")
	require.True(t, ok)
	assert.Equal(t, "coral", c.Facts[0].Topic)

	_, ok = CategoryByName("weather")
	assert.False(t, ok)
}

func TestAllTopicsOrder(t *testing.T) {
	topics := AllTopics()
	require.Len(t, topics, 17)
	// 声明顺序：space在前，ocean在后
	assert.Equal(t, "mars", topics[0])
	assert.Equal(t, "octopus", topics[len(topics)-1])
}

func TestFactTextExact(t *testing.T) {
	text := FactText("Penguins")
	assert.Contains(t, text, "excellent swimmers")
}

func TestFactTextCategoryFallback(t *testing.T) {
	text := FactText("ocean")
	assert.Contains(t, text, "Here's a fact about ocean:")
	assert.Contains(t, text, "coral polyps")
}

func TestFactTextUnknown(t *testing.T) {
	text := FactText("quantum physics")
	assert.Contains(t, text, "I don't have specific facts about 'quantum physics'")
	assert.Contains(t, text, "Available topics include:")
	// 提示消息最多列10个主题
	listed := strings.Count(text, ",")
	assert.LessOrEqual(t, listed, 10)
	assert.Contains(t, text, "mars")
}
