package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
)

// DevelopmentVersion is the version of builds without a release tag.
const DevelopmentVersion = "main"

// CheckReportCompatibility reports whether a binary at binaryVersion can read a sweep
// report written by reportVersion.
//
// Rules:
//   - a development build on either side skips the check
//   - major versions must match
//   - the report must not come from a newer minor release than the binary
//
// Examples:
//   - binary 1.4.0, report 1.2.7 -> OK
//   - binary 1.2.0, report 1.4.0 -> ERROR (report is newer)
//   - binary 2.0.0, report 1.9.0 -> ERROR (major differs)
func CheckReportCompatibility(binaryVersion, reportVersion string) error {
	binaryVersion = strings.TrimPrefix(binaryVersion, "v")
	reportVersion = strings.TrimPrefix(reportVersion, "v")

	if binaryVersion == DevelopmentVersion || reportVersion == DevelopmentVersion {
		return nil
	}

	binary, err := semver.NewVersion(binaryVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid binary version '%s'", binaryVersion)
	}

	report, err := semver.NewVersion(reportVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid report version '%s'", reportVersion)
	}

	if binary.Major() != report.Major() {
		return errors.Newf(errors.ErrCodeBacktestVersionMismatch,
			"major version mismatch: binary is %d.x.x but report was written by %d.x.x",
			binary.Major(), report.Major())
	}

	if report.Minor() > binary.Minor() {
		return errors.Newf(errors.ErrCodeBacktestVersionMismatch,
			"report was written by %d.%d.x which is newer than binary %d.%d.x",
			report.Major(), report.Minor(), binary.Major(), binary.Minor())
	}

	return nil
}
