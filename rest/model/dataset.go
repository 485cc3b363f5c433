package model

import (
	dbmodel "github.com/evergreen-ci/flightpath/model"
	"github.com/evergreen-ci/utility"

	"github.com/pkg/errors"
)

// APIDatasetRecord describes a batch build of trajectories partitioned
// into training, validation, and test subsets.
type APIDatasetRecord struct {
	ID           *string           `json:"id"`
	Info         APIDatasetInfo    `json:"info"`
	State        *string           `json:"state"`
	CreatedAt    APITime           `json:"created_at"`
	CompletedAt  APITime           `json:"completed_at"`
	Trajectories []string          `json:"trajectories"`
	Artifacts    []APIArtifactInfo `json:"artifacts"`
	FailureDesc  *string           `json:"failure_desc,omitempty"`
}

// Import transforms a DatasetRecord object into an APIDatasetRecord
// object.
func (apiRecord *APIDatasetRecord) Import(i interface{}) error {
	switch r := i.(type) {
	case dbmodel.DatasetRecord:
		apiRecord.ID = utility.ToStringPtr(r.ID)
		apiRecord.Info = getDatasetInfo(r.Info)
		apiRecord.State = utility.ToStringPtr(string(r.State))
		apiRecord.CreatedAt = NewTime(r.CreatedAt)
		apiRecord.CompletedAt = NewTime(r.CompletedAt)
		apiRecord.Trajectories = r.Trajectories
		if r.FailureDesc != "" {
			apiRecord.FailureDesc = utility.ToStringPtr(r.FailureDesc)
		}

		var apiArtifacts []APIArtifactInfo
		for _, artifactInfo := range r.Artifacts {
			apiArtifacts = append(apiArtifacts, getArtifactInfo(artifactInfo))
		}
		apiRecord.Artifacts = apiArtifacts
	default:
		return errors.New("incorrect type when converting to APIDatasetRecord type")
	}
	return nil
}

func (apiRecord *APIDatasetRecord) Export() (interface{}, error) {
	return nil, errors.New("Export is not implemented for APIDatasetRecord")
}

// APIDatasetInfo describes information unique to a single dataset build.
type APIDatasetInfo struct {
	Scenario        *string        `json:"scenario"`
	Methods         []string       `json:"methods"`
	SamplesPerRoute int            `json:"samples_per_route"`
	RoutesPerMethod int            `json:"routes_per_method"`
	Seed            int64          `json:"seed"`
	Splits          APISplitRatios `json:"splits"`
}

func getDatasetInfo(r dbmodel.DatasetInfo) APIDatasetInfo {
	return APIDatasetInfo{
		Scenario:        utility.ToStringPtr(r.Scenario),
		Methods:         r.Methods,
		SamplesPerRoute: r.SamplesPerRoute,
		RoutesPerMethod: r.RoutesPerMethod,
		Seed:            r.Seed,
		Splits:          getSplitRatios(r.Splits),
	}
}

// APISplitRatios describes how a dataset is partitioned into training,
// validation, and test subsets.
type APISplitRatios struct {
	Train      float64 `json:"train"`
	Validation float64 `json:"validation"`
	Test       float64 `json:"test"`
}

func getSplitRatios(r dbmodel.SplitRatios) APISplitRatios {
	return APISplitRatios{
		Train:      r.Train,
		Validation: r.Validation,
		Test:       r.Test,
	}
}

// Export returns the split ratios in their database representation.
func (r APISplitRatios) Export() dbmodel.SplitRatios {
	return dbmodel.SplitRatios{
		Train:      r.Train,
		Validation: r.Validation,
		Test:       r.Test,
	}
}
