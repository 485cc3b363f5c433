package data

import (
	"github.com/evergreen-ci/flightpath"
)

// DBConnector is a struct that implements all of the methods which connect
// to the service layer of flightpath. These methods abstract the link
// between the database and the API layers, allowing for changes in the
// service architecture without forcing changes to the API.
type DBConnector struct {
	env flightpath.Environment
}

func CreateDBConnector(env flightpath.Environment) Connector {
	return &DBConnector{
		env: env,
	}
}
