package memory_test

import (
	"testing"

	"github.com/aretw0/mrsim/pkg/adapters/memory"
	"github.com/aretw0/mrsim/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSpectrumStoreContract(t, store)
}
