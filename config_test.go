package flightpath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationValidation(t *testing.T) {
	t.Run("empty configuration is invalid", func(t *testing.T) {
		conf := &Configuration{}
		assert.Error(t, conf.Validate())
	})
	t.Run("requires a database name", func(t *testing.T) {
		conf := &Configuration{
			MongoDBURI: "mongodb://localhost:27017",
			NumWorkers: 2,
		}
		assert.Error(t, conf.Validate())
	})
	t.Run("requires workers", func(t *testing.T) {
		conf := &Configuration{
			MongoDBURI:   "mongodb://localhost:27017",
			DatabaseName: "flightpath_test",
		}
		assert.Error(t, conf.Validate())
	})
	t.Run("defaults are populated", func(t *testing.T) {
		conf := &Configuration{
			MongoDBURI:   "mongodb://localhost:27017",
			DatabaseName: "flightpath_test",
			NumWorkers:   2,
		}
		require.NoError(t, conf.Validate())
		assert.Equal(t, QueueName, conf.QueueName)
		assert.Equal(t, 2*time.Second, conf.MongoDBDialTimeout)
		assert.Equal(t, time.Minute, conf.SocketTimeout)
		assert.True(t, conf.ExpireAfter > 0)
	})
	t.Run("explicit values are preserved", func(t *testing.T) {
		conf := &Configuration{
			MongoDBURI:         "mongodb://localhost:27017",
			DatabaseName:       "flightpath_test",
			NumWorkers:         4,
			QueueName:          "flightpath.other",
			MongoDBDialTimeout: 5 * time.Second,
		}
		require.NoError(t, conf.Validate())
		assert.Equal(t, "flightpath.other", conf.QueueName)
		assert.Equal(t, 5*time.Second, conf.MongoDBDialTimeout)
	})
}
