// Command ordertext-backup exports the order blob into a gzip archive and
// restores archives back, either replacing the live blob or merging into it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"

	"github.com/allforyou/ordertext/internal/storage/file"
)

func main() {
	var (
		storePath string
		out       string
		restore   string
		merge     bool
	)

	flag.StringVar(&storePath, "store", "orders.json", "order blob path")
	flag.StringVar(&out, "out", "", "archive path for export (default <store>-<date>.json.gz)")
	flag.StringVar(&restore, "restore", "", "archive to restore from; omit to export")
	flag.BoolVar(&merge, "merge", false, "merge restored orders into the blob instead of replacing it")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var err error
	if restore != "" {
		err = runRestore(ctx, storePath, restore, merge)
	} else {
		if out == "" {
			out = fmt.Sprintf("%s-%s.json.gz", storePath, time.Now().Format("2006-01-02"))
		}
		err = runExport(storePath, out)
	}
	if err != nil {
		slog.Error("backup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runExport validates the blob and writes a compressed copy of it.
func runExport(storePath, out string) error {
	store, err := file.Open(storePath)
	if err != nil {
		return errors.Wrap(err, "open order store")
	}
	slog.Info("order blob validated", slog.String("store", storePath), slog.Int("orders", store.Len()))

	src, err := os.Open(storePath)
	if err != nil {
		return errors.Wrap(err, "open blob")
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "create archive")
	}
	defer func() { _ = dst.Close() }()

	gz := pgzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		return errors.Wrap(err, "compress blob")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "finish archive")
	}
	if err := dst.Close(); err != nil {
		return errors.Wrap(err, "close archive")
	}

	slog.Info("export complete", slog.String("archive", out))
	return nil
}

// runRestore unpacks the archive next to the blob, validates it, and either
// swaps it into place or merges its orders into the existing blob.
func runRestore(ctx context.Context, storePath, archive string, merge bool) error {
	unpacked, err := unpackArchive(archive, filepath.Dir(storePath))
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(unpacked) }()

	restored, err := file.Open(unpacked)
	if err != nil {
		return errors.Wrap(err, "archive does not contain a valid order blob")
	}
	slog.Info("archive validated", slog.String("archive", archive), slog.Int("orders", restored.Len()))

	if !merge {
		if err := os.Rename(unpacked, storePath); err != nil {
			return errors.Wrap(err, "replace blob")
		}
		slog.Info("restore complete", slog.String("store", storePath), slog.Int("orders", restored.Len()))
		return nil
	}

	live, err := file.Open(storePath)
	if err != nil {
		return errors.Wrap(err, "open order store")
	}

	orders, err := restored.GetAll(ctx)
	if err != nil {
		return errors.Wrap(err, "read restored orders")
	}
	for number, o := range orders {
		if err := live.Save(ctx, number, o); err != nil {
			return errors.Wrapf(err, "merge order %q", number)
		}
	}

	slog.Info("merge complete",
		slog.String("store", storePath),
		slog.Int("merged", len(orders)),
		slog.Int("total", live.Len()),
	)
	return nil
}

// unpackArchive decompresses the archive into a temp file inside dir and
// returns its path.
func unpackArchive(archive, dir string) (string, error) {
	src, err := os.Open(archive)
	if err != nil {
		return "", errors.Wrap(err, "open archive")
	}
	defer func() { _ = src.Close() }()

	gz, err := pgzip.NewReader(src)
	if err != nil {
		return "", errors.Wrap(err, "read archive")
	}
	defer func() { _ = gz.Close() }()

	tmp, err := os.CreateTemp(dir, "ordertext-restore-*.json")
	if err != nil {
		return "", errors.Wrap(err, "create temp blob")
	}
	if _, err := io.Copy(tmp, gz); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", errors.Wrap(err, "decompress archive")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", errors.Wrap(err, "close temp blob")
	}
	return tmp.Name(), nil
}
