package bindings_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relbind/relbind/internal/bindings"
)

const (
	testLanguageNameConstant         = "julia"
	testPackageNameConstant          = "mlpack_jl"
	testBindingExtensionConstant     = ".jl"
	testManifestFileNameConstant     = "Project.toml"
	testManifestTemplateBodyConstant = "name = \"mlpack\"\n"
	testFirstBindingNameConstant     = "a.jl"
	testSecondBindingNameConstant    = "b.jl"
	testIgnoredFileNameConstant      = "notes.txt"
	testBindingBodyConstant          = "module binding\nend\n"
	testMissingBuildRootConstant     = "missing-build-root"
)

func writeBuildTree(testInstance *testing.T, buildRoot string, bindingNames []string, includeManifest bool) string {
	testInstance.Helper()

	packageDirectory := filepath.Join(buildRoot, "src", "mlpack", "bindings", testLanguageNameConstant, testPackageNameConstant)
	bindingDirectory := filepath.Join(packageDirectory, "src")
	require.NoError(testInstance, os.MkdirAll(bindingDirectory, 0o755))

	for _, bindingName := range bindingNames {
		writeError := os.WriteFile(filepath.Join(bindingDirectory, bindingName), []byte(testBindingBodyConstant), 0o644)
		require.NoError(testInstance, writeError)
	}

	if includeManifest {
		writeError := os.WriteFile(filepath.Join(packageDirectory, testManifestFileNameConstant), []byte(testManifestTemplateBodyConstant), 0o644)
		require.NoError(testInstance, writeError)
	}

	return bindingDirectory
}

type permissionDeniedFileSystem struct {
	bindings.OSFileSystem
}

func (permissionDeniedFileSystem) Stat(path string) (fs.FileInfo, error) {
	return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrPermission}
}

func TestLocatorLocate(testInstance *testing.T) {
	testCases := []struct {
		name             string
		bindingNames     []string
		includeManifest  bool
		missingBuildRoot bool
		expectedBindings []string
		expectNotFound   bool
	}{
		{
			name:             "locates_sorted_binding_files",
			bindingNames:     []string{testSecondBindingNameConstant, testFirstBindingNameConstant, testIgnoredFileNameConstant},
			includeManifest:  true,
			expectedBindings: []string{testFirstBindingNameConstant, testSecondBindingNameConstant},
		},
		{
			name:             "missing_build_directory",
			missingBuildRoot: true,
			expectNotFound:   true,
		},
		{
			name:            "missing_manifest_template",
			bindingNames:    []string{testFirstBindingNameConstant},
			includeManifest: false,
			expectNotFound:  true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			buildRoot := testInstance.TempDir()
			if testCase.missingBuildRoot {
				buildRoot = filepath.Join(buildRoot, testMissingBuildRootConstant)
			} else {
				writeBuildTree(testInstance, buildRoot, testCase.bindingNames, testCase.includeManifest)
			}

			fileSystem := bindings.OSFileSystem{}
			locator := bindings.NewLocator(fileSystem, fileSystem)

			located, locateError := locator.Locate(bindings.LocatorOptions{
				BuildRoot:        buildRoot,
				Language:         testLanguageNameConstant,
				PackageName:      testPackageNameConstant,
				FileExtension:    testBindingExtensionConstant,
				ManifestFileName: testManifestFileNameConstant,
			})

			if testCase.expectNotFound {
				require.Error(testInstance, locateError)
				var notFoundError bindings.NotFoundError
				require.ErrorAs(testInstance, locateError, &notFoundError)
				return
			}

			require.NoError(testInstance, locateError)
			require.NotEmpty(testInstance, located.ManifestTemplatePath)

			locatedNames := make([]string, 0, len(located.BindingFilePaths))
			for _, bindingFilePath := range located.BindingFilePaths {
				locatedNames = append(locatedNames, filepath.Base(bindingFilePath))
			}
			require.Equal(testInstance, testCase.expectedBindings, locatedNames)
		})
	}
}

func TestLocatorReportsStatFailureAsIOError(testInstance *testing.T) {
	buildRoot := testInstance.TempDir()
	writeBuildTree(testInstance, buildRoot, []string{testFirstBindingNameConstant}, true)

	fileSystem := permissionDeniedFileSystem{}
	locator := bindings.NewLocator(fileSystem, fileSystem)

	_, locateError := locator.Locate(bindings.LocatorOptions{
		BuildRoot:        buildRoot,
		Language:         testLanguageNameConstant,
		PackageName:      testPackageNameConstant,
		FileExtension:    testBindingExtensionConstant,
		ManifestFileName: testManifestFileNameConstant,
	})

	require.Error(testInstance, locateError)
	var ioError bindings.IOError
	require.ErrorAs(testInstance, locateError, &ioError)
	require.ErrorIs(testInstance, locateError, fs.ErrPermission)

	var notFoundError bindings.NotFoundError
	require.False(testInstance, errors.As(locateError, &notFoundError))
}
