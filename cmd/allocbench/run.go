package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/wasmheap/liteheap/internal/region"
	"github.com/wasmheap/liteheap/pkg/heap"
)

// workloadReserveBytes sizes the OS-backed host every run/stats invocation
// reserves up front; generous enough that the synthetic workload's own
// sizing (below) is the thing under test, not this ceiling.
const workloadReserveBytes = 64 << 20

// opRecord is one entry of an op-log: a deterministic, allocator-agnostic
// description of an alloc/dealloc/realloc call, addressed by a logical id
// rather than a real address so the same log can be replayed against any
// variant and still make sense.
type opRecord struct {
	Op      string `json:"op"`
	ID      int    `json:"id"`
	Size    uint32 `json:"size,omitempty"`
	Align   uint32 `json:"align,omitempty"`
	NewSize uint32 `json:"new_size,omitempty"`
}

// workloadResult is the JSON shape stats prints; run prints its fields as
// one text line followed by the Stats value as JSON.
type workloadResult struct {
	Variant         string `json:"variant"`
	Ops             int    `json:"ops"`
	LiveAllocations int    `json:"live_allocations"`
	Stats           any    `json:"stats"`
}

func newRunCmd() *cobra.Command {
	var variant string
	var ops int
	var seed int64
	var out string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a synthetic alloc/dealloc workload and print a summary plus stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := heap.ParseVariant(variant)
			if !ok {
				return fmt.Errorf("unknown variant %q", variant)
			}

			log := generateOps(ops, seed)
			if out != "" {
				if err := writeOpLog(out, log); err != nil {
					return fmt.Errorf("writing op log: %w", err)
				}
			}

			result, err := runOpLog(v, log)
			if err != nil {
				return err
			}

			fmt.Printf("variant=%s ops=%d seed=%d live=%d\n", result.Variant, result.Ops, seed, result.LiveAllocations)
			return printJSON(result.Stats)
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "bump", "allocator variant: bump|segregated|coalescing")
	cmd.Flags().IntVar(&ops, "ops", 10000, "number of alloc/dealloc operations to generate")
	cmd.Flags().Int64Var(&seed, "seed", 1, "PRNG seed for the synthetic workload")
	cmd.Flags().StringVar(&out, "out", "", "optional path to save the generated op-log for later replay with `stats`")

	return cmd
}

func newStatsCmd() *cobra.Command {
	var variant string

	cmd := &cobra.Command{
		Use:   "stats <op-log-file>",
		Short: "Replay a recorded op-log against a variant and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := heap.ParseVariant(variant)
			if !ok {
				return fmt.Errorf("unknown variant %q", variant)
			}

			log, err := readOpLog(args[0])
			if err != nil {
				return fmt.Errorf("reading op log: %w", err)
			}

			result, err := runOpLog(v, log)
			if err != nil {
				return err
			}

			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "bump", "allocator variant: bump|segregated|coalescing")

	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// generateOps produces a deterministic op-log: roughly a 2:1 alloc:free
// mix, sizes in [1, 256], fixed 8-byte alignment, seeded for
// reproducibility. Frees always target a still-live id chosen from the
// generation-time live set, so the log is valid against any variant
// regardless of what addresses that variant actually hands back.
func generateOps(n int, seed int64) []opRecord {
	rng := rand.New(rand.NewSource(seed))

	var log []opRecord
	var liveIDs []int
	nextID := 0

	for i := 0; i < n; i++ {
		if len(liveIDs) > 0 && rng.Intn(3) == 0 {
			idx := rng.Intn(len(liveIDs))
			id := liveIDs[idx]
			liveIDs = append(liveIDs[:idx], liveIDs[idx+1:]...)
			log = append(log, opRecord{Op: "dealloc", ID: id})
			continue
		}

		size := uint32(1 + rng.Intn(256))
		log = append(log, opRecord{Op: "alloc", ID: nextID, Size: size, Align: 8})
		liveIDs = append(liveIDs, nextID)
		nextID++
	}

	return log
}

// runOpLog builds a fresh Heap of variant v over a reserved mmap host and
// replays log against it.
func runOpLog(v heap.Variant, log []opRecord) (*workloadResult, error) {
	logf("reserving %d bytes of host memory for variant %s", workloadReserveBytes, v)

	host, err := region.NewMmapHostMemory(workloadReserveBytes)
	if err != nil {
		return nil, fmt.Errorf("reserving host memory: %w", err)
	}

	h, err := heap.NewDefault(v, host)
	if err != nil {
		return nil, err
	}

	logf("replaying %d ops against %s", len(log), v)
	live, err := executeOps(h, log)
	if err != nil {
		return nil, err
	}

	return &workloadResult{
		Variant:         v.String(),
		Ops:             len(log),
		LiveAllocations: live,
		Stats:           h.Stats(),
	}, nil
}

// executeOps replays log against h, translating logical ids to the real
// addresses the variant hands back. A failed alloc or realloc (capacity
// exhaustion) is a valid workload outcome, not a harness error. A failed
// alloc never enters the live set, so later ops referencing its id are
// skipped as already gone; a failed realloc leaves the id live at its old
// address and size.
func executeOps(h *heap.Heap, log []opRecord) (live int, err error) {
	addrs := make(map[int]uint32)
	sizes := make(map[int]uint32)

	for _, rec := range log {
		switch rec.Op {
		case "alloc":
			addr, aerr := h.Alloc(rec.Size, rec.Align)
			if aerr != nil {
				continue
			}
			addrs[rec.ID] = addr
			sizes[rec.ID] = rec.Size

		case "dealloc":
			addr, ok := addrs[rec.ID]
			if !ok {
				continue
			}
			h.Dealloc(addr, sizes[rec.ID], 8)
			delete(addrs, rec.ID)
			delete(sizes, rec.ID)

		case "realloc":
			addr, ok := addrs[rec.ID]
			if !ok {
				continue
			}
			newAddr, rerr := h.Realloc(addr, sizes[rec.ID], rec.Align, rec.NewSize)
			if rerr != nil {
				continue
			}
			addrs[rec.ID] = newAddr
			sizes[rec.ID] = rec.NewSize

		default:
			return 0, fmt.Errorf("op-log: unknown op %q at id %d", rec.Op, rec.ID)
		}
	}

	return len(addrs), nil
}

func writeOpLog(path string, log []opRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	return enc.Encode(log)
}

func readOpLog(path string) ([]opRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var log []opRecord
	if err := json.NewDecoder(f).Decode(&log); err != nil {
		return nil, err
	}
	return log, nil
}
