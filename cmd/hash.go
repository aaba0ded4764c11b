// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	peparser "github.com/saferwall/dotnetsurface"
	"github.com/saferwall/dotnetsurface/log"
	"github.com/saferwall/dotnetsurface/surfacehash"
	"github.com/spf13/cobra"
)

var (
	includeAllAttributes bool
	jsonOutput           bool
)

// hashResult is one line of --json output for a single assembly.
type hashResult struct {
	Path  string `json:"path"`
	Hash  string `json:"hash,omitempty"`
	Error string `json:"error,omitempty"`
}

// hashFilesWorker is the per-path half of the hash command's directory
// walk: hashPath feeds paths over a job channel and waits on a WaitGroup,
// and each worker emits one surface hash per file it receives.
func hashFilesWorker(jobs <-chan string, wg *sync.WaitGroup, logger log.Logger) {
	for path := range jobs {
		hashOneFile(path, logger)
		wg.Done()
	}
}

func hashOneFile(filename string, logger log.Logger) {
	helper := log.NewHelper(logger)
	helper.Infof("hashing %s", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		printHashResult(hashResult{Path: filename, Error: err.Error()})
		return
	}

	f, err := peparser.NewBytes(data, &peparser.Options{Logger: logger})
	if err != nil {
		printHashResult(hashResult{Path: filename, Error: err.Error()})
		return
	}
	defer f.Close()

	if err := f.Parse(); err != nil {
		printHashResult(hashResult{Path: filename, Error: err.Error()})
		return
	}
	if !f.FileInfo.HasCLR {
		printHashResult(hashResult{Path: filename, Error: "not a managed assembly"})
		return
	}

	reader, err := surfacehash.FromPE(f)
	if err != nil {
		printHashResult(hashResult{Path: filename, Error: err.Error()})
		return
	}

	hasher := surfacehash.New(reader, surfacehash.Options{
		IncludeAllAttributes: includeAllAttributes,
		Logger:               logger,
	})
	v, err := hasher.Hash()
	if err != nil {
		printHashResult(hashResult{Path: filename, Error: err.Error()})
		return
	}

	printHashResult(hashResult{Path: filename, Hash: fmt.Sprintf("0x%016x", v)})
}

func printHashResult(r hashResult) {
	if jsonOutput {
		buf, _ := json.Marshal(r)
		fmt.Println(string(buf))
		return
	}
	if r.Error != "" {
		fmt.Printf("%s\terror: %s\n", r.Path, r.Error)
		return
	}
	fmt.Printf("%s\t%s\n", r.Path, r.Hash)
}

// hashPath hashes filePath if it names a file, or walks it recursively and
// hashes every regular file found, concurrently, if it names a directory.
func hashPath(filePath string, logger log.Logger) {
	if !isDirectory(filePath) {
		hashOneFile(filePath, logger)
		return
	}

	jobs := make(chan string)
	var wg sync.WaitGroup

	const workerCount = 4
	for i := 0; i < workerCount; i++ {
		go hashFilesWorker(jobs, &wg, logger)
	}

	filepath.Walk(filePath, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		wg.Add(1)
		jobs <- path
		return nil
	})

	wg.Wait()
	close(jobs)
}

func newHashCmd() *cobra.Command {
	hashCmd := &cobra.Command{
		Use:   "hash <path>",
		Short: "Computes the API-surface content hash of a .NET assembly",
		Long:  "Computes a deterministic content hash over a managed assembly's public API surface, or recurses over a directory of assemblies",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			logger := log.NewStdLogger(os.Stdout)
			level := log.LevelWarn
			if verbose {
				level = log.LevelDebug
			}
			logger = log.NewFilter(logger, log.FilterLevel(level))
			hashPath(args[0], logger)
		},
	}
	hashCmd.Flags().BoolVar(&includeAllAttributes, "include-all-attributes", false,
		"fold every custom attribute into the hash, bypassing the well-known-type filter")
	hashCmd.Flags().BoolVar(&jsonOutput, "json", false, "print one JSON object per assembly instead of a tab-separated line")
	return hashCmd
}
