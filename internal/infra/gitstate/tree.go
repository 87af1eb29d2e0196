package gitstate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

func loadBaseTree(repo *git.Repository) (*plumbing.Reference, *object.Tree, plumbing.Hash, error) {
	baseRef, err := repo.Reference(plumbing.ReferenceName(mainRefName), true)
	if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil, plumbing.ZeroHash, fmt.Errorf("read main ref: %w", err)
	}
	if baseRef == nil {
		return nil, nil, plumbing.ZeroHash, nil
	}

	commit, err := repo.CommitObject(baseRef.Hash())
	if err != nil {
		return nil, nil, plumbing.ZeroHash, fmt.Errorf("read main commit: %w", err)
	}
	baseTree, err := commit.Tree()
	if err != nil {
		return nil, nil, plumbing.ZeroHash, fmt.Errorf("read main tree: %w", err)
	}
	return baseRef, baseTree, commit.TreeHash, nil
}

func readTreeFile(tree *object.Tree, filePath string) ([]byte, error) {
	file, err := tree.File(filePath)
	if err != nil {
		return nil, err
	}

	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", filePath, err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", filePath, err)
	}
	return data, nil
}

func writeBlob(s storer.EncodedObjectStorer, data []byte) (plumbing.Hash, error) {
	obj := s.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", err)
	}
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", err)
	}
	if err := writer.Close(); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", err)
	}
	return s.SetEncodedObject(obj)
}

// updateTree returns the hash of baseHash's tree with filePath pointing at
// fileHash, rewriting every tree on the way down.
func updateTree(s storer.EncodedObjectStorer, baseHash plumbing.Hash, filePath string, fileHash plumbing.Hash) (plumbing.Hash, error) {
	baseTree := &object.Tree{}
	if !baseHash.IsZero() {
		var err error
		baseTree, err = object.GetTree(s, baseHash)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("load tree: %w", err)
		}
	}

	parts := strings.Split(strings.Trim(filePath, "/"), "/")
	updated, err := updateTreeRecursive(s, baseTree, parts, fileHash)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return writeTree(s, updated)
}

func updateTreeRecursive(s storer.EncodedObjectStorer, tree *object.Tree, parts []string, fileHash plumbing.Hash) (*object.Tree, error) {
	if len(parts) == 0 {
		return tree, nil
	}

	name := parts[0]
	entries := make([]object.TreeEntry, 0, len(tree.Entries)+1)
	var existing *object.TreeEntry
	for _, entry := range tree.Entries {
		if entry.Name == name {
			e := entry
			existing = &e
			continue
		}
		entries = append(entries, entry)
	}

	if len(parts) == 1 {
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Regular, Hash: fileHash})
	} else {
		child := &object.Tree{}
		if existing != nil && existing.Mode == filemode.Dir {
			var err error
			child, err = object.GetTree(s, existing.Hash)
			if err != nil {
				return nil, fmt.Errorf("load tree %s: %w", name, err)
			}
		}

		updatedChild, err := updateTreeRecursive(s, child, parts[1:], fileHash)
		if err != nil {
			return nil, err
		}
		childHash, err := writeTree(s, updatedChild)
		if err != nil {
			return nil, err
		}
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: childHash})
	}

	sort.Sort(object.TreeEntrySorter(entries))
	return &object.Tree{Entries: entries}, nil
}

func writeTree(s storer.EncodedObjectStorer, tree *object.Tree) (plumbing.Hash, error) {
	obj := s.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode tree: %w", err)
	}
	return s.SetEncodedObject(obj)
}

func writeCommit(s storer.EncodedObjectStorer, treeHash plumbing.Hash, parent *plumbing.Reference, message string, info domain.LedgerInfo) (plumbing.Hash, error) {
	when := info.ClosedAt
	if when.IsZero() {
		when = time.Unix(0, 0)
	}
	author := object.Signature{
		Name:  "memostamp",
		Email: "memostamp@local",
		When:  when.UTC(),
	}

	commit := &object.Commit{
		Author:    author,
		Committer: author,
		Message:   message,
		TreeHash:  treeHash,
	}
	if parent != nil {
		commit.ParentHashes = []plumbing.Hash{parent.Hash()}
	}

	obj := s.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode commit: %w", err)
	}
	return s.SetEncodedObject(obj)
}
