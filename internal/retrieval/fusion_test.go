package retrieval

import (
	"reflect"
	"testing"
)

func chunkList(ids ...string) []RetrievedChunk {
	list := make([]RetrievedChunk, 0, len(ids))
	for i, id := range ids {
		list = append(list, RetrievedChunk{
			ID:     id,
			Score:  0.9 - float64(i)*0.1,
			Scored: true,
		})
	}
	return list
}

func fusedIDs(chunks []RetrievedChunk) []string {
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestFuseRRF_SharedChunkRanksFirst(t *testing.T) {
	// "b" appears in both lists, so its reciprocal-rank sum beats every
	// single-list chunk including both rank-1 entries.
	listA := chunkList("a", "b", "c")
	listB := chunkList("b", "d")

	fused := fuseRRF([][]RetrievedChunk{listA, listB}, 10)

	if len(fused) != 4 {
		t.Fatalf("fuseRRF() returned %d chunks, want 4", len(fused))
	}
	if fused[0].ID != "b" {
		t.Errorf("fuseRRF() top = %q, want %q", fused[0].ID, "b")
	}
}

func TestFuseRRF_Deterministic(t *testing.T) {
	listA := chunkList("a", "b", "c", "d")
	listB := chunkList("c", "e", "a")

	first := fusedIDs(fuseRRF([][]RetrievedChunk{listA, listB}, 10))
	for i := 0; i < 20; i++ {
		again := fusedIDs(fuseRRF([][]RetrievedChunk{listA, listB}, 10))
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("fuseRRF() order changed between runs: %v vs %v", first, again)
		}
	}
}

func TestFuseRRF_TiesKeepFirstSeenOrder(t *testing.T) {
	// "a" and "b" each appear once at rank 1, so their fused scores tie.
	listA := chunkList("a")
	listB := chunkList("b")

	fused := fuseRRF([][]RetrievedChunk{listA, listB}, 10)

	want := []string{"a", "b"}
	if got := fusedIDs(fused); !reflect.DeepEqual(got, want) {
		t.Errorf("fuseRRF() order = %v, want %v", got, want)
	}
}

func TestFuseRRF_TruncatesToK(t *testing.T) {
	listA := chunkList("a", "b", "c", "d", "e")

	fused := fuseRRF([][]RetrievedChunk{listA}, 3)
	if len(fused) != 3 {
		t.Errorf("fuseRRF() returned %d chunks, want 3", len(fused))
	}
}

func TestFuseRRF_KeepsOriginalScores(t *testing.T) {
	listA := []RetrievedChunk{{ID: "a", Score: 0.87, Scored: true}}
	listB := []RetrievedChunk{{ID: "a", Score: 0.87, Scored: true}}

	fused := fuseRRF([][]RetrievedChunk{listA, listB}, 10)
	if len(fused) != 1 {
		t.Fatalf("fuseRRF() returned %d chunks, want 1", len(fused))
	}
	if fused[0].Score != 0.87 {
		t.Errorf("fused score = %v, want original 0.87", fused[0].Score)
	}
}

func TestFuseRRF_HashKeyFallback(t *testing.T) {
	// Chunks without IDs dedupe by text hash.
	listA := []RetrievedChunk{{Text: "same text", Score: 0.8, Scored: true}}
	listB := []RetrievedChunk{{Text: "same text", Score: 0.8, Scored: true}}

	fused := fuseRRF([][]RetrievedChunk{listA, listB}, 10)
	if len(fused) != 1 {
		t.Errorf("fuseRRF() returned %d chunks, want 1 after hash dedupe", len(fused))
	}
}
