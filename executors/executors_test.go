package executors

import "testing"

func TestRegisteredExecutors(t *testing.T) {
	for _, name := range []string{"container", "local"} {
		executor, err := GetExecutor(name)
		if err != nil {
			t.Fatalf("GetExecutor(%q) failed: %v", name, err)
		}
		if executor.Name() != name {
			t.Fatalf("Expected executor name %q, got %q", name, executor.Name())
		}
	}
}

func TestGetExecutor_Unknown(t *testing.T) {
	if _, err := GetExecutor("kubernetes"); err == nil {
		t.Fatalf("Expected error for unknown executor")
	}
}

func TestListExecutors_Sorted(t *testing.T) {
	names := ListExecutors()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Executor list not sorted: %v", names)
		}
	}
}
