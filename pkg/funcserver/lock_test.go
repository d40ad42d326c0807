package funcserver

import (
	"testing"
	"time"

	"github.com/salpyeo/dream/pkg/docstore"
)

func TestLock_SerializesUser(t *testing.T) {
	s, err := New(Config{MasterKey: "k"}, docstore.NewMemory(), nil)
	if err != nil {
		t.Fatal(err)
	}
	const user = "c0ff4b5b-3c2d-4335-a057-33e48c565f1e"

	unlock := s.lock(user)
	acquired := make(chan struct{})
	go func() {
		release := s.lock(user)
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first is held")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock not acquired after unlock")
	}
}
