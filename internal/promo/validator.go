// Package promo validates promotional codes against multiple code files.
//
// A code is valid when it is 8-10 characters long and appears in at
// least two of the loaded files. Each file is held as a bloom filter
// rather than a full set, which bounds memory for large code lists at
// the cost of a small false-positive rate.
package promo

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// falsePositiveRate is the per-filter bloom false-positive probability.
const falsePositiveRate = 0.0001

// Validator validates promo codes against multiple code files.
type Validator struct {
	filters []*bloom.BloomFilter
	mu      sync.RWMutex
}

// fileLoadResult holds the result of loading a single file
type fileLoadResult struct {
	index  int
	filter *bloom.BloomFilter
	err    error
}

// NewValidator creates an empty promo validator. With no files loaded
// every code is invalid.
func NewValidator() *Validator {
	return &Validator{}
}

// LoadFromFiles loads code files concurrently, one bloom filter per
// file. Files ending in .gz are decompressed. Returns an error if any
// file fails to load.
func (v *Validator) LoadFromFiles(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no code files provided")
	}

	resultChan := make(chan fileLoadResult, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(index int, filePath string) {
			defer wg.Done()

			filter, err := loadFile(ctx, filePath)
			resultChan <- fileLoadResult{
				index:  index,
				filter: filter,
				err:    err,
			}
		}(i, path)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]fileLoadResult, len(paths))
	for result := range resultChan {
		results[result.index] = result
	}

	for i, result := range results {
		if result.err != nil {
			return fmt.Errorf("failed to load file %d: %w", i+1, result.err)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.filters = make([]*bloom.BloomFilter, len(results))
	for i, result := range results {
		v.filters[i] = result.filter
	}

	return nil
}

// loadFile reads one newline-delimited code file into a bloom filter.
func loadFile(ctx context.Context, path string) (*bloom.BloomFilter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gzReader, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader
	}

	codes, err := parseCodes(reader)
	if err != nil {
		return nil, err
	}

	n := uint(len(codes))
	if n == 0 {
		n = 1
	}
	filter := bloom.NewWithEstimates(n, falsePositiveRate)
	for _, code := range codes {
		filter.AddString(code)
	}

	return filter, nil
}

// parseCodes reads codes from a reader, skipping blank lines.
func parseCodes(r io.Reader) ([]string, error) {
	var codes []string
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			codes = append(codes, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return codes, nil
}

// IsValid checks if a promo code is valid.
// A code is valid if:
// 1. It has 8-10 characters
// 2. It appears in at least 2 of the loaded files
func (v *Validator) IsValid(ctx context.Context, code string) bool {
	if len(code) < 8 || len(code) > 10 {
		return false
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if len(v.filters) == 0 {
		return false
	}

	count := 0
	for _, filter := range v.filters {
		if filter.TestString(code) {
			count++
			if count >= 2 {
				return true
			}
		}
	}

	return false
}

// Stats returns the number of loaded files and the approximate total
// number of codes across them.
func (v *Validator) Stats() map[string]interface{} {
	v.mu.RLock()
	defer v.mu.RUnlock()

	total := uint32(0)
	for _, filter := range v.filters {
		total += filter.ApproximatedSize()
	}

	return map[string]interface{}{
		"total_files":       len(v.filters),
		"approximate_codes": total,
	}
}
