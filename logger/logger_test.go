// This file is part of dsdecomp.
//
// dsdecomp is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// dsdecomp is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with dsdecomp.  If not, see <https://www.gnu.org/licenses/>.

package logger_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pret/dsdecomp/logger"
)

func TestLog(t *testing.T) {
	logger.Clear()
	defer logger.Clear()

	var w strings.Builder
	logger.Write(&w)
	assert.Equal(t, "", w.String())

	logger.Log("test", "this is a test")
	w.Reset()
	logger.Write(&w)
	assert.Equal(t, "test: this is a test\n", w.String())
}

func TestLogf(t *testing.T) {
	logger.Clear()
	defer logger.Clear()

	logger.Logf("xref", "ambiguous pointer at %#08x", 0x02001000)

	var w strings.Builder
	logger.Write(&w)
	assert.Equal(t, "xref: ambiguous pointer at 0x02001000\n", w.String())
}

func TestTailRespectsCapacity(t *testing.T) {
	logger.Clear()
	defer logger.Clear()
	logger.SetCapacity(3)
	defer logger.SetCapacity(500)

	for i := 0; i < 5; i++ {
		logger.Logf("n", "%d", i)
	}

	var w strings.Builder
	logger.Tail(&w, 5)
	assert.Equal(t, "n: 2\nn: 3\nn: 4\n", w.String())
}

func TestTail(t *testing.T) {
	logger.Clear()
	defer logger.Clear()

	logger.Log("a", "one")
	logger.Log("b", "two")
	logger.Log("c", "three")

	var w strings.Builder
	logger.Tail(&w, 2)
	assert.Equal(t, "b: two\nc: three\n", w.String())
}
