package regexcache

import (
	"fmt"
	"sync"
	"testing"
)

func TestGet_ValidPattern(t *testing.T) {
	Clear()
	re, err := Get(`^a+b$`)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !re.MatchString("aaab") {
		t.Error("Expected match")
	}
}

func TestGet_InvalidPattern(t *testing.T) {
	if _, err := Get(`(unclosed`); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}

func TestGet_Caching(t *testing.T) {
	Clear()
	re1, _ := Get(`x\d+`)
	re2, _ := Get(`x\d+`)
	if re1 != re2 {
		t.Error("Expected the same compiled instance")
	}
	if int(size.Load()) != 1 {
		t.Errorf("Expected size 1, got %d", int(size.Load()))
	}
}

func TestWithLiteral_QuotesMeta(t *testing.T) {
	re, err := WithLiteral(`location\.?.*(%s)`, "http://www.w3af.org/")
	if err != nil {
		t.Fatalf("WithLiteral: %v", err)
	}
	if !re.MatchString(`location.href = "http://www.w3af.org/x"`) {
		t.Error("Expected literal match")
	}
	if re.MatchString(`location.href = "http://wwwXw3afXorg/"`) {
		t.Error("dots in the literal must not match arbitrary characters")
	}
}

func TestBounded(t *testing.T) {
	Clear()
	for i := 0; i < MaxEntries+10; i++ {
		if _, err := Get(fmt.Sprintf("p%d", i)); err != nil {
			t.Fatal(err)
		}
	}
	if int(size.Load()) > MaxEntries {
		t.Errorf("Expected at most %d entries, got %d", MaxEntries, int(size.Load()))
	}
}

func TestConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := Get(fmt.Sprintf("c%d", i%5)); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
}
