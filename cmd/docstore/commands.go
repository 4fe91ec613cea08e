package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/viant/docstore/document"
	"github.com/viant/docstore/executor"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve /add, /search, /size and /health over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
		defer cancel()

		logger := newLogger()
		reader, err := openReader(ctx, cmd, logger)
		if err != nil {
			return err
		}
		defer reader.Close()

		server := &http.Server{
			Addr:              serveAddr,
			Handler:           executor.NewHandler(reader, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting HTTP server", "addr", serveAddr)
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
			defer stop()
			return server.Shutdown(shutdownCtx)
		}
	},
}

var addFile string

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add documents read from a JSON file (or - for stdin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := readDocs(addFile)
		if err != nil {
			return err
		}
		reader, err := openReader(cmd.Context(), cmd, newLogger())
		if err != nil {
			return err
		}
		defer reader.Close()

		result, err := reader.Add(cmd.Context(), docs, executor.Parameters{})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Written: %d/%d\n", result.Written, result.Total)
		for _, failed := range result.Failed {
			fmt.Fprintf(cmd.OutOrStdout(), "  failed: %v\n", failed)
		}
		return result.Err()
	},
}

var (
	searchFile   string
	noEmbeddings bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Hydrate documents read from a JSON file (or - for stdin) and print them",
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := readDocs(searchFile)
		if err != nil {
			return err
		}
		reader, err := openReader(cmd.Context(), cmd, newLogger())
		if err != nil {
			return err
		}
		defer reader.Close()

		var params executor.Parameters
		if noEmbeddings {
			returnEmbeddings := false
			params.ReturnEmbeddings = &returnEmbeddings
		}
		if _, err := reader.Search(cmd.Context(), docs, params); err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	},
}

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Print the number of stored records",
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := openReader(cmd.Context(), cmd, newLogger())
		if err != nil {
			return err
		}
		defer reader.Close()

		n, err := reader.Size(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")
	addCmd.Flags().StringVarP(&addFile, "file", "f", "-", "JSON array of documents")
	searchCmd.Flags().StringVarP(&searchFile, "file", "f", "-", "JSON array of documents (ids only is enough)")
	searchCmd.Flags().BoolVar(&noEmbeddings, "no-embeddings", false, "do not return embeddings")
}

func readDocs(name string) ([]*document.Document, error) {
	var r io.Reader = os.Stdin
	if name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var docs []*document.Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return docs, nil
}
