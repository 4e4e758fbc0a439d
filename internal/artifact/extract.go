package artifact

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver/v4"

	"github.com/octopilot/secret-manager-controller/internal/errs"
)

// downloadAndVerify fetches a Flux artifact tarball and checks its
// checksum before any extraction is attempted (spec §4.4: "verify the
// declared checksum over the downloaded tarball before extraction; on
// mismatch, discard and fail with IntegrityError").
func downloadAndVerify(ctx context.Context, url, expectedChecksum string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New(errs.KindArtifactIntegrity, "artifact.downloadAndVerify", fmt.Errorf("building request: %w", err))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errs.New(errs.KindArtifactPending, "artifact.downloadAndVerify", fmt.Errorf("downloading artifact: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.New(errs.KindArtifactPending, "artifact.downloadAndVerify", fmt.Errorf("unexpected status %d downloading %s", resp.StatusCode, url))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.New(errs.KindArtifactPending, "artifact.downloadAndVerify", fmt.Errorf("reading artifact body: %w", err))
	}

	if expectedChecksum != "" {
		sum := sha256.Sum256(body)
		actual := hex.EncodeToString(sum[:])
		normalized := strings.TrimPrefix(expectedChecksum, "sha256:")
		if actual != normalized {
			return nil, errs.New(errs.KindArtifactIntegrity, "artifact.downloadAndVerify",
				fmt.Errorf("checksum mismatch for %s: want %s got %s", url, normalized, actual))
		}
	}

	return body, nil
}

// extractTarball walks a tar(.gz) archive and writes its contents under
// destDir, rejecting any entry whose resolved path escapes destDir
// (UnsafePath, permanent per spec §4.4).
func extractTarball(ctx context.Context, tarball []byte, destDir string) error {
	format, input, err := archiver.Identify("", bytes.NewReader(tarball))
	if err != nil {
		return errs.New(errs.KindArtifactIntegrity, "artifact.extractTarball", fmt.Errorf("identifying archive format: %w", err))
	}

	extractor, ok := format.(archiver.Extractor)
	if !ok {
		return errs.New(errs.KindArtifactIntegrity, "artifact.extractTarball", fmt.Errorf("format does not support extraction"))
	}

	return extractor.Extract(ctx, input, func(_ context.Context, f archiver.FileInfo) error {
		target, err := safeJoin(destDir, f.NameInArchive)
		if err != nil {
			return errs.New(errs.KindArtifactIntegrity, "artifact.extractTarball", err)
		}

		if f.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		if f.LinkTarget != "" {
			return errs.New(errs.KindArtifactIntegrity, "artifact.extractTarball",
				fmt.Errorf("symlink entries are not permitted: %s", f.NameInArchive))
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		src, err := f.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, f.Mode())
		if err != nil {
			return err
		}
		defer out.Close()

		_, err = io.Copy(out, src)
		return err
	})
}

// safeJoin resolves name against root and rejects any result that escapes
// root via ".." or an absolute path. The check is lexical; symlink entries
// are refused separately by extractTarball.
func safeJoin(root, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("unsafe absolute path in archive: %s", name)
	}
	cleaned := filepath.Clean(filepath.Join(root, name))
	rootWithSep := filepath.Clean(root) + string(os.PathSeparator)
	if cleaned != filepath.Clean(root) && !strings.HasPrefix(cleaned, rootWithSep) {
		return "", fmt.Errorf("unsafe path escapes root: %s", name)
	}
	return cleaned, nil
}
