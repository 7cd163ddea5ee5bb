package dataset

import (
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/ymsk-ml/customboost/pkg/errors"
)

// LoadMatrix reads a 2-D numpy .npy file into a dense matrix.
func LoadMatrix(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, errors.Wrapf(err, "reading npy matrix from %s", path)
	}
	return &m, nil
}

// LoadVector reads a 1-D numpy .npy file, e.g. a label array.
func LoadVector(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var v []float64
	if err := npyio.Read(f, &v); err != nil {
		return nil, errors.Wrapf(err, "reading npy vector from %s", path)
	}
	return v, nil
}

// SaveMatrix writes a matrix as a numpy .npy file.
func SaveMatrix(path string, m mat.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := npyio.Write(f, m); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing npy matrix to %s", path)
	}
	return errors.WithStack(f.Close())
}

// SaveVector writes a float slice as a 1-D numpy .npy file.
func SaveVector(path string, v []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := npyio.Write(f, v); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing npy vector to %s", path)
	}
	return errors.WithStack(f.Close())
}
