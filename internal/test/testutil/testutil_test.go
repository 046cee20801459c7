// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	assert.Equal(t, 7, RequireReceive(t, ch, time.Second, "buffered value"))
	RequireNoReceive(t, ch, 10*time.Millisecond, "drained channel")
}

func TestWaitForCondition(t *testing.T) {
	done := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(done)
	}()
	WaitForCondition(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, "goroutine finished")
}

func TestNewDatabase(t *testing.T) {
	db := NewDatabase(t, "")
	require.NotNil(t, db.Metadata())
	require.NotNil(t, db.Blob())
	assert.Empty(t, db.DataDir())
}
