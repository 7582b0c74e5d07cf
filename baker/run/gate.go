package run

import (
	"fmt"
	"io/fs"

	"github.com/spf13/afero"

	"github.com/kettleworks/bake/baker/record"
	"github.com/kettleworks/bake/internal/version"
)

// signature fingerprints everything that invalidates the whole output cache:
// the effective configuration and the engine version.
func (b *Baker) signature() string {
	return record.HashString(string(b.cfg.CanonicalBytes()) + version.Version)
}

// checkGate decides between an incremental run and a full purge. On purge the
// output tree and the record are cleared, the new signature is stamped, and
// smart skips are disabled for the rest of the run.
func (b *Baker) checkGate() error {
	if err := b.advance(stateIdle, stateGateChecked); err != nil {
		return err
	}

	sig := b.signature()
	reason, err := b.purgeReason(sig)
	if err != nil {
		return err
	}
	if reason == "" {
		return nil
	}

	fmt.Printf("🧹 Baking everything: %s\n", reason)

	if err := b.clearOutput(); err != nil {
		return fmt.Errorf("failed to clear output: %w", err)
	}
	if err := b.manager.ResetRecord(); err != nil {
		return fmt.Errorf("failed to reset record: %w", err)
	}
	if err := b.manager.SetSignature(sig); err != nil {
		return fmt.Errorf("failed to store signature: %w", err)
	}

	b.rec = record.NewRecord()
	b.noSkips = true
	return nil
}

// purgeReason returns the first trigger that applies, in fixed priority
// order, or empty when an incremental run is safe.
func (b *Baker) purgeReason(sig string) (string, error) {
	if b.opts.CleanCache {
		return "ordered to", nil
	}

	valid, err := b.manager.VerifySignature(sig)
	if err != nil {
		return "", err
	}
	if !valid {
		return "cached output is not valid anymore", nil
	}

	if !b.rec.Trusted() {
		return "bake record must be regenerated", nil
	}

	modified, err := b.templatesModifiedSince(b.rec.LastBakeTime())
	if err != nil {
		return "", err
	}
	if modified {
		return "templates were modified", nil
	}

	return "", nil
}

// templatesModifiedSince reports whether any template file was touched at or
// after the last bake. The comparison is inclusive: a template saved in the
// same second as the bake counts as modified.
func (b *Baker) templatesModifiedSince(lastBake int64) (bool, error) {
	exists, err := afero.DirExists(b.srcFs, b.cfg.TemplateDir)
	if err != nil || !exists {
		return false, err
	}

	modified := false
	err = afero.Walk(b.srcFs, b.cfg.TemplateDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && info.ModTime().Unix() >= lastBake {
			modified = true
		}
		return nil
	})
	return modified, err
}

// clearOutput empties the output directory without removing it.
func (b *Baker) clearOutput() error {
	entries, err := afero.ReadDir(b.destFs, ".")
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := b.destFs.RemoveAll(e.Name()); err != nil {
			return err
		}
	}
	return nil
}
