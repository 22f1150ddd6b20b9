package indexer

import "fmt"

// BlockRange represents an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// Len is the number of blocks in the range.
func (r BlockRange) Len() uint64 { return r.To - r.From + 1 }

// SplitRange splits [from, to] into consecutive batches of at most batchSize
// blocks. The last batch may be shorter.
func SplitRange(from, to, batchSize uint64) ([]BlockRange, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	ranges := make([]BlockRange, 0, (to-from)/batchSize+1)
	for start := from; ; start += batchSize {
		if to-start < batchSize {
			ranges = append(ranges, BlockRange{From: start, To: to})
			return ranges, nil
		}
		ranges = append(ranges, BlockRange{From: start, To: start + batchSize - 1})
	}
}
