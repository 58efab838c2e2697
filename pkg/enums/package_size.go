package enums

import "fmt"

// PackageSize is the declared size class of a Box shipment.
type PackageSize string

const (
	PackageSizeSmall  PackageSize = "SMALL"
	PackageSizeMedium PackageSize = "MEDIUM"
	PackageSizeLarge  PackageSize = "LARGE"
)

var validPackageSizes = []PackageSize{
	PackageSizeSmall,
	PackageSizeMedium,
	PackageSizeLarge,
}

// String implements fmt.Stringer.
func (s PackageSize) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PackageSize.
func (s PackageSize) IsValid() bool {
	for _, candidate := range validPackageSizes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePackageSize converts raw input into a PackageSize.
func ParsePackageSize(value string) (PackageSize, error) {
	for _, candidate := range validPackageSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid package size %q", value)
}
