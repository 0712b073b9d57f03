package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

func TestSnapshotSVG(t *testing.T) {
	static := physics.NewParticle(physics.Tungsten, dynamo.Vector3{X: 1, Y: 1, Z: 0.5}, dynamo.Vector3{})
	static.Static = true
	free := physics.NewParticle(physics.Tungsten, dynamo.Vector3{X: 2, Y: 3, Z: 4}, dynamo.Vector3{})
	free.Free = true
	bulk := physics.NewParticle(physics.Tungsten, dynamo.Vector3{X: 0, Y: 0, Z: 1}, dynamo.Vector3{})

	space := dynamo.Vector3{X: 4, Y: 4, Z: 5}
	var buf bytes.Buffer
	require.NoError(t, SnapshotSVG(&buf, []*physics.Particle{static, free, bulk}, space, SideView, 100))

	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, "<circle"))
	assert.Contains(t, out, `width="400" height="500"`)
	assert.Contains(t, out, `cx="100.0" cy="450.0"`)
	assert.Contains(t, out, `cx="200.0" cy="100.0"`)
	assert.Contains(t, out, colorStatic)
	assert.Contains(t, out, colorFree)
	assert.Contains(t, out, colorBulk)

	buf.Reset()
	require.NoError(t, SnapshotSVG(&buf, []*physics.Particle{free}, space, TopView, 100))
	assert.Contains(t, buf.String(), `cx="200.0" cy="100.0"`)
	assert.Contains(t, buf.String(), `height="400"`)

	assert.Error(t, SnapshotSVG(&buf, nil, space, SideView, 0))
}

func TestParseProjection(t *testing.T) {
	p, err := ParseProjection("top")
	require.NoError(t, err)
	assert.Equal(t, TopView, p)
	p, err = ParseProjection("xz")
	require.NoError(t, err)
	assert.Equal(t, SideView, p)
	_, err = ParseProjection("iso")
	assert.Error(t, err)
}

func TestSeriesSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SeriesSVG(&buf, []float64{0, 1, 2}, []float64{300, 310, 305}, 200, 100, "#ff00ff"))
	out := buf.String()
	assert.Contains(t, out, `stroke="#ff00ff"`)
	assert.Equal(t, 2, strings.Count(out, " L"))

	assert.Error(t, SeriesSVG(&buf, []float64{0}, []float64{1}, 10, 10, "red"))
	assert.Error(t, SeriesSVG(&buf, []float64{0, 1}, []float64{1}, 10, 10, "red"))
}
