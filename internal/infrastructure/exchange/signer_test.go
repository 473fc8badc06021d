package exchange

import (
	"net/url"
	"testing"
	"time"
)

func fixedSigner(key, secret string) *Signer {
	s := NewSigner(key, secret)
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	return s
}

func TestSigner_OrderRequestGoldenVector(t *testing.T) {
	// Known-good HMAC-SHA512 output, computed independently. The
	// exchange verifies signatures bit-exactly, so any change to the
	// payload construction must fail here.
	s := fixedSigner("test-key", "test-secret")

	body := []byte(`{"contract":"BTC_USDT","size":1,"price":"0","tif":"ioc"}`)
	headers := s.Headers("POST", "/futures/usdt/orders", "", body)

	if headers["KEY"] != "test-key" {
		t.Errorf("Expected KEY 'test-key', got %s", headers["KEY"])
	}
	if headers["Timestamp"] != "1700000000" {
		t.Errorf("Expected Timestamp '1700000000', got %s", headers["Timestamp"])
	}
	expected := "5e7ed462571e096358d131ba3203decdf7734abce3e3f46dea26178bb474037d5fa88fd082cea15eabe3554c9d0cbf64b750b4fe9c487a6d88e0d513883e9e0b"
	if headers["SIGN"] != expected {
		t.Errorf("SIGN mismatch.\nexpected %s\ngot      %s", expected, headers["SIGN"])
	}
}

func TestSigner_EmptyBodyGoldenVector(t *testing.T) {
	// GET requests sign the SHA-512 of the empty byte sequence.
	s := fixedSigner("test-key", "test-secret")

	headers := s.Headers("GET", "/futures/usdt/tickers", "contract=BTC_USDT", nil)

	expected := "c9473dd3b593258ff537ea49ebcf0cc0e97607f90724ad6985afa1b8fff5a36adad93d40a3797e8cb4378ded1b782dd645a4c4f3bd17681048812cf1f526e615"
	if headers["SIGN"] != expected {
		t.Errorf("SIGN mismatch.\nexpected %s\ngot      %s", expected, headers["SIGN"])
	}
}

func TestSigner_TimestampPrecision(t *testing.T) {
	s := NewSigner("k", "s")
	s.now = func() time.Time { return time.Unix(1700000000, 123456000) }

	headers := s.Headers("GET", "/futures/usdt/accounts", "", nil)
	if headers["Timestamp"] != "1700000000.123456" {
		t.Errorf("Expected sub-second timestamp, got %s", headers["Timestamp"])
	}
}

func TestCanonicalQuery(t *testing.T) {
	if got := canonicalQuery(nil); got != "" {
		t.Errorf("Expected empty string for absent params, got %q", got)
	}

	params := url.Values{}
	params.Set("status", "open")
	params.Set("contract", "BTC_USDT")
	if got := canonicalQuery(params); got != "contract=BTC_USDT&status=open" {
		t.Errorf("Expected keys sorted lexicographically, got %q", got)
	}
}
