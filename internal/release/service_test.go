package release_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relbind/relbind/internal/bindings"
	"github.com/relbind/relbind/internal/manifest"
	"github.com/relbind/relbind/internal/patch"
	"github.com/relbind/relbind/internal/registry"
	"github.com/relbind/relbind/internal/release"
)

const (
	testLanguageNameConstant       = "julia"
	testPackageNameConstant        = "mlpack"
	testPackageVersionConstant     = "4.3.0"
	testFileExtensionConstant      = ".jl"
	testManifestFileNameConstant   = "Project.toml"
	testTestBindingNameConstant    = "test_binding.jl"
	testLibraryPathConstant        = "../lib/library.so"
	testLibraryReplacementConstant = "mlpack_jll.library_path"
	testManifestTemplateConstant   = "name = \"mlpack\"\nuuid = \"cbc4af07-4b76-4087-a4d4-f3574e693f32\"\n"
	testTrackingIdentifierConstant = "update-77"
)

type recordingPublisher struct {
	stagedRepositoryPath string
	stagedFilePaths      []string
	submittedRequest     registry.UpdateRequest
	submitCalled         bool
	stagingError         error
	submissionError      error
}

func (publisher *recordingPublisher) StageChanges(_ context.Context, targetRepositoryPath string, stagedFilePaths []string) error {
	publisher.stagedRepositoryPath = targetRepositoryPath
	publisher.stagedFilePaths = append([]string{}, stagedFilePaths...)
	return publisher.stagingError
}

func (publisher *recordingPublisher) Submit(_ context.Context, updateRequest registry.UpdateRequest) (registry.UpdateTicket, error) {
	publisher.submitCalled = true
	publisher.submittedRequest = updateRequest
	if publisher.submissionError != nil {
		return registry.UpdateTicket{}, publisher.submissionError
	}
	return registry.UpdateTicket{Identifier: testTrackingIdentifierConstant}, nil
}

func writeBuildTree(testInstance *testing.T, buildRoot string, bindingBodies map[string]string) {
	testInstance.Helper()

	packageDirectory := filepath.Join(buildRoot, "src", "mlpack", "bindings", testLanguageNameConstant, testPackageNameConstant)
	bindingDirectory := filepath.Join(packageDirectory, "src")
	require.NoError(testInstance, os.MkdirAll(bindingDirectory, 0o755))

	for bindingName, bindingBody := range bindingBodies {
		require.NoError(testInstance, os.WriteFile(filepath.Join(bindingDirectory, bindingName), []byte(bindingBody), 0o644))
	}

	require.NoError(testInstance, os.WriteFile(filepath.Join(packageDirectory, testManifestFileNameConstant), []byte(testManifestTemplateConstant), 0o644))
}

func defaultBindingBodies() map[string]string {
	return map[string]string{
		"a.jl":                      "module a\nconst library = \"" + testLibraryPathConstant + "\"\nend\n",
		"b.jl":                      "module b\nend\n",
		testTestBindingNameConstant: "module test_binding\nend\n",
	}
}

func defaultRules() []patch.Rule {
	return []patch.Rule{
		{Kind: patch.RuleKindDelete, FileName: testTestBindingNameConstant},
		{Kind: patch.RuleKindRewrite, Pattern: testLibraryPathConstant, Replacement: testLibraryReplacementConstant},
	}
}

func buildOptions(buildRoot string, targetRoot string) release.Options {
	return release.Options{
		BuildRoot:      buildRoot,
		TargetRoot:     targetRoot,
		Language:       testLanguageNameConstant,
		PackageName:    testPackageNameConstant,
		PackageVersion: testPackageVersionConstant,
		FileExtension:  testFileExtensionConstant,
		ManifestFile:   testManifestFileNameConstant,
		Rules:          defaultRules(),
		ManifestEntries: []manifest.Entry{
			{Section: "deps", Key: "mlpack_jll", Value: testPackageVersionConstant},
		},
	}
}

func newTestService(testInstance *testing.T, publisher release.Publisher) *release.Service {
	testInstance.Helper()

	serviceInstance, constructionError := release.NewService(bindings.OSFileSystem{}, bindings.OSFileSystem{}, publisher, zap.NewNop())
	require.NoError(testInstance, constructionError)
	return serviceInstance
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name            string
		fileSystem      bindings.FileSystem
		directoryReader bindings.DirectoryReader
		publisher       release.Publisher
		logger          *zap.Logger
		expectedError   error
	}{
		{
			name:            "missing_file_system",
			fileSystem:      nil,
			directoryReader: bindings.OSFileSystem{},
			publisher:       &recordingPublisher{},
			logger:          zap.NewNop(),
			expectedError:   release.ErrFileSystemNotConfigured,
		},
		{
			name:            "missing_directory_reader",
			fileSystem:      bindings.OSFileSystem{},
			directoryReader: nil,
			publisher:       &recordingPublisher{},
			logger:          zap.NewNop(),
			expectedError:   release.ErrDirectoryReaderNotConfigured,
		},
		{
			name:            "missing_publisher",
			fileSystem:      bindings.OSFileSystem{},
			directoryReader: bindings.OSFileSystem{},
			publisher:       nil,
			logger:          zap.NewNop(),
			expectedError:   release.ErrPublisherNotConfigured,
		},
		{
			name:            "missing_logger",
			fileSystem:      bindings.OSFileSystem{},
			directoryReader: bindings.OSFileSystem{},
			publisher:       &recordingPublisher{},
			logger:          nil,
			expectedError:   release.ErrLoggerNotConfigured,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			serviceInstance, constructionError := release.NewService(testCase.fileSystem, testCase.directoryReader, testCase.publisher, testCase.logger)
			require.ErrorIs(subtestInstance, constructionError, testCase.expectedError)
			require.Nil(subtestInstance, serviceInstance)
		})
	}
}

func TestExecuteRunsPipelineThroughStaging(testInstance *testing.T) {
	buildRoot := testInstance.TempDir()
	targetRoot := testInstance.TempDir()
	writeBuildTree(testInstance, buildRoot, defaultBindingBodies())

	publisher := &recordingPublisher{}
	serviceInstance := newTestService(testInstance, publisher)

	session, executionError := serviceInstance.Execute(context.Background(), buildOptions(buildRoot, targetRoot))
	require.NoError(testInstance, executionError)

	require.True(testInstance, session.Completed(release.StageLocated))
	require.True(testInstance, session.Completed(release.StageTransplanted))
	require.True(testInstance, session.Completed(release.StagePatched))
	require.True(testInstance, session.Completed(release.StageManifestUpdated))
	require.True(testInstance, session.Completed(release.StageStagedForCommit))
	require.False(testInstance, session.Completed(release.StagePublished))
	require.False(testInstance, publisher.submitCalled)

	targetSourceDirectory := filepath.Join(targetRoot, "src")
	directoryEntries, readError := os.ReadDir(targetSourceDirectory)
	require.NoError(testInstance, readError)
	entryNames := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		entryNames = append(entryNames, directoryEntry.Name())
	}
	require.Equal(testInstance, []string{"a.jl", "b.jl"}, entryNames)

	patchedContent, patchedReadError := os.ReadFile(filepath.Join(targetSourceDirectory, "a.jl"))
	require.NoError(testInstance, patchedReadError)
	require.Contains(testInstance, string(patchedContent), testLibraryReplacementConstant)
	require.NotContains(testInstance, string(patchedContent), testLibraryPathConstant)

	manifestContent, manifestReadError := os.ReadFile(filepath.Join(targetRoot, testManifestFileNameConstant))
	require.NoError(testInstance, manifestReadError)
	document, parseError := manifest.ParseDocument(manifestContent)
	require.NoError(testInstance, parseError)
	versionValue, versionPresent := document.Value("version")
	require.True(testInstance, versionPresent)
	require.Equal(testInstance, testPackageVersionConstant, versionValue)
	require.Equal(testInstance, testPackageVersionConstant, document.Section("deps")["mlpack_jll"])

	require.Equal(testInstance, targetRoot, publisher.stagedRepositoryPath)
	require.Len(testInstance, publisher.stagedFilePaths, 3)
	require.Contains(testInstance, publisher.stagedFilePaths, filepath.Join(targetRoot, testManifestFileNameConstant))
}

func TestExecuteSubmitsWhenRequested(testInstance *testing.T) {
	buildRoot := testInstance.TempDir()
	targetRoot := testInstance.TempDir()
	writeBuildTree(testInstance, buildRoot, defaultBindingBodies())

	publisher := &recordingPublisher{}
	serviceInstance := newTestService(testInstance, publisher)

	options := buildOptions(buildRoot, targetRoot)
	options.Submit = true

	session, executionError := serviceInstance.Execute(context.Background(), options)
	require.NoError(testInstance, executionError)

	require.True(testInstance, session.Completed(release.StagePublished))
	require.Equal(testInstance, testTrackingIdentifierConstant, session.TrackingID)
	require.True(testInstance, publisher.submitCalled)
	require.Equal(testInstance, testPackageNameConstant, publisher.submittedRequest.PackageName)
	require.Equal(testInstance, testPackageVersionConstant, publisher.submittedRequest.PackageVersion)
}

func TestExecuteDryRunStopsAfterLocating(testInstance *testing.T) {
	buildRoot := testInstance.TempDir()
	targetRoot := testInstance.TempDir()
	writeBuildTree(testInstance, buildRoot, defaultBindingBodies())

	publisher := &recordingPublisher{}
	serviceInstance := newTestService(testInstance, publisher)

	options := buildOptions(buildRoot, targetRoot)
	options.DryRun = true

	session, executionError := serviceInstance.Execute(context.Background(), options)
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, []release.Stage{release.StageLocated}, session.CompletedStages)
	require.Empty(testInstance, publisher.stagedFilePaths)

	_, statError := os.Stat(filepath.Join(targetRoot, "src"))
	require.True(testInstance, os.IsNotExist(statError))
}

func TestExecuteStrictModeFailsOnUnmatchedRule(testInstance *testing.T) {
	buildRoot := testInstance.TempDir()
	targetRoot := testInstance.TempDir()
	writeBuildTree(testInstance, buildRoot, defaultBindingBodies())

	publisher := &recordingPublisher{}
	serviceInstance := newTestService(testInstance, publisher)

	options := buildOptions(buildRoot, targetRoot)
	options.Strict = true
	options.Rules = append(options.Rules, patch.Rule{Kind: patch.RuleKindRewrite, Pattern: "no such pattern", Replacement: "unused"})

	session, executionError := serviceInstance.Execute(context.Background(), options)
	require.Error(testInstance, executionError)

	var mismatchError patch.PatchMismatchError
	require.ErrorAs(testInstance, executionError, &mismatchError)

	require.True(testInstance, session.Completed(release.StageTransplanted))
	require.False(testInstance, session.Completed(release.StagePatched))
	require.Empty(testInstance, publisher.stagedFilePaths)
}

func TestExecuteReportsMissingBuildTree(testInstance *testing.T) {
	buildRoot := testInstance.TempDir()
	targetRoot := testInstance.TempDir()

	publisher := &recordingPublisher{}
	serviceInstance := newTestService(testInstance, publisher)

	session, executionError := serviceInstance.Execute(context.Background(), buildOptions(buildRoot, targetRoot))
	require.Error(testInstance, executionError)

	var notFoundError bindings.NotFoundError
	require.ErrorAs(testInstance, executionError, &notFoundError)
	require.Empty(testInstance, session.CompletedStages)
}

func TestExecuteRequiresVersionWhenSubmitting(testInstance *testing.T) {
	publisher := &recordingPublisher{}
	serviceInstance := newTestService(testInstance, publisher)

	options := buildOptions(testInstance.TempDir(), testInstance.TempDir())
	options.Submit = true
	options.PackageVersion = ""

	_, executionError := serviceInstance.Execute(context.Background(), options)
	require.Error(testInstance, executionError)
	require.False(testInstance, publisher.submitCalled)
}
