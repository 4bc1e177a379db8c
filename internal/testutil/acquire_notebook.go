package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/andrebq/jotbox/notebook"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireNotebook opens a throwaway notebook under a temp directory and
// returns it together with its cleanup function.
func AcquireNotebook(ctx context.Context, t TestLog, name string) (*notebook.Control, func()) {
	dir, err := os.MkdirTemp("", "jotbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	book, err := notebook.Open(ctx, filepath.Join(dir, name+".db"))
	if err != nil {
		t.Fatal(err)
	}
	return book, func() {
		err := book.Close()
		if err != nil {
			t.Log("unable to close notebook", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}
