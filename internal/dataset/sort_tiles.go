package dataset

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"

	"github.com/forest-guardian/hopper-dataset/internal/properties"
	"github.com/forest-guardian/hopper-dataset/internal/tiles"
	"github.com/forest-guardian/hopper-dataset/internal/utils"
	"github.com/gammazero/workerpool"
)

type Options struct {
	DataDir   string
	OutputDir string
	// NegativeSample is the fraction of negative tiles kept, in [0, 1].
	NegativeSample float64
	// Seed drives the negative shuffle. Zero picks a random seed.
	Seed    uint64
	Move    bool
	Workers int
	Quiet   bool
}

type Summary struct {
	PositiveTiles int
	NegativeTiles int
	NegativesKept int
	Files         int
	Skipped       []string
}

type transfer struct {
	src, dstDir string
}

func copyFile(src, dstDir string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	dst := filepath.Join(dstDir, filepath.Base(src))
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func moveFile(src, dstDir string) error {
	dst := filepath.Join(dstDir, filepath.Base(src))
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dstDir); err != nil {
		return err
	}
	return os.Remove(src)
}

// Sort places the band files of positive tiles under hoppers/ and a shuffled
// sample of negative tiles under no_hoppers/.
func Sort(positives map[string]struct{}, opts Options) (Summary, error) {
	if opts.NegativeSample < 0 || opts.NegativeSample > 1 {
		return Summary{}, fmt.Errorf("negative sample must be within [0, 1], got %g", opts.NegativeSample)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	posPath := filepath.Join(opts.OutputDir, properties.PositiveDir)
	negPath := filepath.Join(opts.OutputDir, properties.NegativeDir)
	for _, dir := range []string{posPath, negPath} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return Summary{}, fmt.Errorf("failed to create label folder: %w", err)
		}
	}

	entries, err := os.ReadDir(opts.DataDir)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read data folder: %w", err)
	}

	var summary Summary
	var transfers []transfer
	positiveTiles := make(map[string]struct{})
	negFiles := make(map[string][]string)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		parsed, err := tiles.ParseName(entry.Name())
		if err != nil || parsed.Band == "" {
			summary.Skipped = append(summary.Skipped, entry.Name())
			continue
		}
		path := filepath.Join(opts.DataDir, entry.Name())
		id := parsed.ID()
		if _, ok := positives[id]; ok {
			positiveTiles[id] = struct{}{}
			transfers = append(transfers, transfer{src: path, dstDir: posPath})
			continue
		}
		negFiles[id] = append(negFiles[id], path)
	}

	negIDs := utils.SortedKeys(negFiles)
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	rng.Shuffle(len(negIDs), func(i, j int) {
		negIDs[i], negIDs[j] = negIDs[j], negIDs[i]
	})
	keep := int(float64(len(negIDs)) * opts.NegativeSample)
	for _, id := range negIDs[:keep] {
		for _, path := range negFiles[id] {
			transfers = append(transfers, transfer{src: path, dstDir: negPath})
		}
	}

	summary.PositiveTiles = len(positiveTiles)
	summary.NegativeTiles = len(negIDs)
	summary.NegativesKept = keep
	summary.Files = len(transfers)

	apply := copyFile
	description := "Copying files to label folders"
	if opts.Move {
		apply = moveFile
		description = "Moving files to label folders"
	}

	var (
		mu          sync.Mutex
		progressBar = utils.NewProgressBar(len(transfers), description, opts.Quiet)
		firstErr    error
		once        sync.Once
	)
	wp := workerpool.New(opts.Workers)
	for _, t := range transfers {
		wp.Submit(func() {
			if err := apply(t.src, t.dstDir); err != nil {
				once.Do(func() { firstErr = fmt.Errorf("failed to transfer %s: %w", t.src, err) })
				return
			}
			mu.Lock()
			progressBar.Add(1)
			mu.Unlock()
		})
	}
	wp.StopWait()

	if firstErr != nil {
		return summary, firstErr
	}
	return summary, nil
}
