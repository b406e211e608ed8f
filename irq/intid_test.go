package irq

import "testing"

func TestConstructorsRoundTrip(t *testing.T) {
	for n := uint32(0); n < 16; n++ {
		id := SGI(n)
		if id.U32() != n {
			t.Fatalf("SGI(%d) = %d", n, id.U32())
		}
		if !id.IsSGI() || !id.IsPrivate() {
			t.Fatalf("SGI(%d) misclassified: %v", n, id)
		}
	}
	for n := uint32(0); n < 16; n++ {
		id := PPI(n)
		if id.U32() != 16+n {
			t.Fatalf("PPI(%d) = %d", n, id.U32())
		}
		if !id.IsPPI() || !id.IsPrivate() || id.IsSGI() {
			t.Fatalf("PPI(%d) misclassified: %v", n, id)
		}
	}
	for _, n := range []uint32{0, 1, 500, 987} {
		id := SPI(n)
		if id.U32() != 32+n {
			t.Fatalf("SPI(%d) = %d", n, id.U32())
		}
		if !id.IsSPI() || id.IsPrivate() {
			t.Fatalf("SPI(%d) misclassified: %v", n, id)
		}
	}
	if !EPPI(0).IsPrivate() || EPPI(0).U32() != 1056 {
		t.Fatalf("EPPI(0) = %v", EPPI(0))
	}
	if ESPI(0).IsPrivate() || ESPI(0).U32() != 4096 {
		t.Fatalf("ESPI(0) = %v", ESPI(0))
	}
	if LPI(0).U32() != 8192 || !LPI(0).IsLPI() {
		t.Fatalf("LPI(0) = %v", LPI(0))
	}
}

func TestConstructorsReject(t *testing.T) {
	cases := []func(){
		func() { SGI(16) },
		func() { PPI(16) },
		func() { SPI(988) },
		func() { EPPI(64) },
		func() { ESPI(1024) },
	}
	for i, fn := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("case %d: out-of-range constructor did not panic", i)
				}
			}()
			fn()
		}()
	}
}

func TestSpecialIDs(t *testing.T) {
	if !Spurious.IsSpecial() {
		t.Fatalf("1023 should be special")
	}
	for _, v := range []uint32{1020, 1021, 1022, 1023} {
		if !Raw(v).IsSpecial() {
			t.Fatalf("%d should be special", v)
		}
		if Raw(v).IsSPI() {
			t.Fatalf("%d should not be an SPI", v)
		}
	}
	if Raw(1019).IsSpecial() || Raw(1024).IsSpecial() {
		t.Fatalf("special range should be exactly 1020..1023")
	}
}

func TestValid(t *testing.T) {
	for _, v := range []uint32{0, 15, 16, 31, 32, 1019, 1020, 1023, 1056, 1119, 4096, 5119, 8192, 1 << 20} {
		if !Raw(v).Valid() {
			t.Fatalf("%d should be valid", v)
		}
	}
	for _, v := range []uint32{1024, 1055, 1120, 4095, 5120, 8191} {
		if Raw(v).Valid() {
			t.Fatalf("%d should be invalid", v)
		}
	}
}
