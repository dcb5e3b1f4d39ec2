package gitops

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Template folder names inside the seed repository.
const (
	ModelBuildFolder  = "model_build"
	ModelDeployFolder = "model_deploy"
	workflowsDir      = ".github/workflows"
)

// SeedBuildRepo copies the build template for a profile into the project
// repository: the pipeline code itself plus its workflow definitions.
func SeedBuildRepo(templateDir, profileName, repoDir string) error {
	source := filepath.Join(templateDir, profileName, ModelBuildFolder)
	if err := copyTree(source, repoDir); err != nil {
		return fmt.Errorf("seed %s: %w", ModelBuildFolder, err)
	}

	workflows := filepath.Join(templateDir, profileName, workflowsDir)
	if _, err := os.Stat(workflows); err == nil {
		if err := copyTree(workflows, filepath.Join(repoDir, workflowsDir)); err != nil {
			return fmt.Errorf("seed workflows: %w", err)
		}
	}
	return nil
}

// SeedDeployRepo copies the deploy template for a profile into the freshly
// created deployment repository.
func SeedDeployRepo(templateDir, profileName, repoDir string) error {
	source := filepath.Join(templateDir, profileName, ModelDeployFolder)
	if err := copyTree(source, repoDir); err != nil {
		return fmt.Errorf("seed %s: %w", ModelDeployFolder, err)
	}
	return nil
}

// copyTree copies src into dst, creating directories as needed. Git metadata
// is skipped.
func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == ".git" {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(dst, rel), 0o755)
		}
		return copyFile(path, filepath.Join(dst, rel))
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
