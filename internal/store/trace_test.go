package store

import (
	"errors"
	"io"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cwbudde/beecolony/pkg/abc"
)

func entry(round int, cost float64) TraceEntry {
	return TraceEntry{
		Round:     round,
		Status:    abc.Status{Iterations: round * 10, ScoutEvents: round, NaNEvents: 0},
		Best:      abc.Solution{Position: []float64{float64(round), -1}, Cost: cost},
		Elapsed:   time.Duration(round) * time.Millisecond,
		Timestamp: time.Now(),
	}
}

func TestTraceWriter_WriteAndRead(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "test-job-123"

	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	entries := []TraceEntry{entry(1, 1.0), entry(2, 0.8), entry(3, 0.6)}
	entries[2].Bits = []bool{true, false}
	for _, e := range entries {
		if err := writer.Write(e); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}
	if writer.Path() != TracePath(tmpDir, jobID) {
		t.Errorf("Unexpected path %s", writer.Path())
	}

	readEntries, err := ReadTrace(tmpDir, jobID)
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(readEntries) != len(entries) {
		t.Fatalf("Expected %d entries, got %d", len(entries), len(readEntries))
	}
	for i, e := range readEntries {
		if e.Round != entries[i].Round {
			t.Errorf("Entry %d: expected round %d, got %d", i, entries[i].Round, e.Round)
		}
		if e.Best.Cost != entries[i].Best.Cost {
			t.Errorf("Entry %d: expected cost %f, got %f", i, entries[i].Best.Cost, e.Best.Cost)
		}
		if e.Status != entries[i].Status {
			t.Errorf("Entry %d: status mismatch %+v", i, e.Status)
		}
		if e.Elapsed != entries[i].Elapsed {
			t.Errorf("Entry %d: elapsed mismatch %v", i, e.Elapsed)
		}
		if len(e.Bits) != len(entries[i].Bits) {
			t.Errorf("Entry %d: expected %d bits, got %d", i, len(entries[i].Bits), len(e.Bits))
		}
	}
}

func TestTraceWriter_Append(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "test-job-append"

	for _, round := range []int{1, 2} {
		writer, err := NewTraceWriter(tmpDir, jobID, round > 1)
		if err != nil {
			t.Fatalf("Failed to create trace writer: %v", err)
		}
		if err := writer.Write(entry(round, 1/float64(round))); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
		if err := writer.Close(); err != nil {
			t.Fatalf("Failed to close writer: %v", err)
		}
	}

	entries, err := ReadTrace(tmpDir, jobID)
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(entries) != 2 || entries[0].Round != 1 || entries[1].Round != 2 {
		t.Fatalf("Expected rounds 1 and 2, got %+v", entries)
	}

	// A fresh writer truncates.
	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatal(err)
	}
	writer.Close()
	entries, err = ReadTrace(tmpDir, jobID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected truncated trace, got %d entries", len(entries))
	}
}

func TestTraceWriter_Flush(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "test-job-flush"

	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}
	defer writer.Close()

	if err := writer.Write(entry(1, 0.5)); err != nil {
		t.Fatal(err)
	}
	if err := writer.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	// Readable before close
	entries, err := ReadTrace(tmpDir, jobID)
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 entry after flush, got %d", len(entries))
	}
}

func TestTraceReader_ReadIteratively(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "test-job-iter"

	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 5; i++ {
		if err := writer.Write(entry(i, float64(i))); err != nil {
			t.Fatal(err)
		}
	}
	writer.Close()

	reader, err := NewTraceReader(tmpDir, jobID)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	defer reader.Close()

	for i := 1; i <= 5; i++ {
		e, err := reader.Read()
		if err != nil {
			t.Fatalf("Read %d failed: %v", i, err)
		}
		if e.Round != i {
			t.Errorf("Expected round %d, got %d", i, e.Round)
		}
	}
	if _, err := reader.Read(); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestTraceReader_NotFound(t *testing.T) {
	_, err := NewTraceReader(t.TempDir(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTraceReader_Malformed(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "broken"
	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatal(err)
	}
	writer.Close()
	if err := os.WriteFile(TracePath(tmpDir, jobID), []byte("{\"round\":1}\nnot json\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadTrace(tmpDir, jobID); err == nil {
		t.Error("Expected decode error")
	}
}

func TestTraceWriter_NonFiniteCost(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "nan-job"

	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := writer.Write(entry(1, math.NaN())); err != nil {
		t.Fatalf("Writing NaN cost failed: %v", err)
	}
	if err := writer.Write(entry(2, math.Inf(1))); err != nil {
		t.Fatalf("Writing +Inf cost failed: %v", err)
	}
	writer.Close()

	entries, err := ReadTrace(tmpDir, jobID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if !math.IsNaN(entries[0].Best.Cost) || !math.IsInf(entries[1].Best.Cost, 1) {
		t.Errorf("Non-finite costs not preserved: %v, %v", entries[0].Best.Cost, entries[1].Best.Cost)
	}
	if entries[1].Best.Position[0] != 2 {
		t.Errorf("Position not preserved: %v", entries[1].Best.Position)
	}
}

func TestDeleteTrace(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "test-job-delete"

	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatal(err)
	}
	writer.Close()

	if err := DeleteTrace(tmpDir, jobID); err != nil {
		t.Fatalf("DeleteTrace failed: %v", err)
	}
	if _, err := os.Stat(TracePath(tmpDir, jobID)); !os.IsNotExist(err) {
		t.Error("Trace file still exists")
	}

	// Deleting again is not an error
	if err := DeleteTrace(tmpDir, jobID); err != nil {
		t.Errorf("DeleteTrace on missing file failed: %v", err)
	}
}

func TestTraceWriter_ConcurrentWrites(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "test-job-concurrent"

	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatal(err)
	}

	const goroutines, perGoroutine = 8, 25
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				if err := writer.Write(entry(g*perGoroutine+i, float64(i))); err != nil {
					t.Errorf("Write failed: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	entries, err := ReadTrace(tmpDir, jobID)
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(entries) != goroutines*perGoroutine {
		t.Errorf("Expected %d entries, got %d", goroutines*perGoroutine, len(entries))
	}
	seen := map[int]bool{}
	for _, e := range entries {
		seen[e.Round] = true
	}
	if len(seen) != goroutines*perGoroutine {
		t.Errorf("Expected unique rounds, got %d", len(seen))
	}
}
