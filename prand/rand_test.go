// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prand

import "testing"

func TestIntNBounds(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := IntN(10)
		if v < 0 || v >= 10 {
			t.Fatalf("IntN(10) = %d, out of range", v)
		}
	}
}

func TestCookie256NotConstant(t *testing.T) {
	a := NewCookie256()
	b := NewCookie256()
	if a == b {
		t.Fatal("two successive cookies were identical")
	}
}

func TestUint64Varies(t *testing.T) {
	seen := map[uint64]bool{}
	for i := 0; i < 20; i++ {
		seen[Uint64()] = true
	}
	if len(seen) < 15 {
		t.Fatalf("Uint64 produced only %d distinct values in 20 draws", len(seen))
	}
}
