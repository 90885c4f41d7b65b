package fu

import (
	"gotest.tools/assert"
	"math"
	"testing"
)

func Test_Fnz(t *testing.T) {
	assert.Equal(t, Fnzi(0, 0, 3, 4), 3)
	assert.Equal(t, Fnzd(0, 0.5), 0.5)
	assert.Equal(t, Fnzs("", "x"), "x")
	assert.Equal(t, Fnzs(), "")
}

func Test_Logistic(t *testing.T) {
	assert.Equal(t, Sigmoid(0), 0.5)
	assert.Assert(t, Sigmoid(-1000) == 0 && Sigmoid(1000) == 1)
	assert.Assert(t, math.Abs(LogOnePlusExp(0)-math.Ln2) < 1e-12)
	assert.Assert(t, math.Abs(LogOnePlusExp(1000)-1000) < 1e-9)
	assert.Assert(t, LogOnePlusExp(-1000) >= 0 && !math.IsInf(LogOnePlusExp(-1000), 0))
	assert.Assert(t, !Finite([]float64{1, math.NaN()}))
	assert.Equal(t, Indmaxd([]float64{1, 3, 2}), 1)
}

func Test_Struct(t *testing.T) {
	s := MakeStruct([]string{"a", "b"}, 1, 2)
	assert.Equal(t, s.Float("b"), 2.)
	assert.Equal(t, s.Float("c"), 0.)
	assert.Equal(t, s.Pos("a"), 0)
	assert.Equal(t, s.Pos("c"), -1)
}
