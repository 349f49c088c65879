package conn

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pingcap/errors"
)

const (
	envHost     = "_DB_HOST"
	envName     = "_DB_NAME"
	envUser     = "_DB_USER"
	envPassword = "_DB_PASS"
	envPort     = "_DB_PORT"

	envEncrypt = "DB_ENCRYPT"
	envSSLMode = "DB_SSLMODE"
)

var sideVarSuffixes = []string{envHost, envName, envUser, envPassword, envPort}

// Env is a snapshot of the environment variables used to build connections.
// Only variables that are set appear in it; an empty value still counts as set.
type Env map[string]string

// LoadEnv collects the variables of both sides through lookup.
func LoadEnv(lookup func(string) (string, bool)) Env {
	env := make(Env)
	names := []string{envEncrypt, envSSLMode}
	for _, side := range []Side{Left, Right} {
		for _, suffix := range sideVarSuffixes {
			names = append(names, side.envPrefix()+suffix)
		}
	}
	for _, name := range names {
		if v, ok := lookup(name); ok {
			env[name] = v
		}
	}
	return env
}

// EnvFromOS collects the variables from the process environment.
func EnvFromOS() Env {
	return LoadEnv(os.LookupEnv)
}

// Endpoint is what an Engine needs to reach one database.
type Endpoint struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string

	// Encrypt is the value of DB_ENCRYPT, used by mssql.
	Encrypt string
	// SSLMode is the value of DB_SSLMODE, used by pg.
	SSLMode string
}

// MissingEnvError lists the required variables that are not set.
type MissingEnvError struct {
	Vars []string
}

func (e *MissingEnvError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Vars, ", ")
}

// Endpoint resolves the endpoint of side for engine. All missing variables are
// reported together.
func (e Env) Endpoint(side Side, engine Engine) (Endpoint, error) {
	prefix := side.envPrefix()
	required := make([]string, 0, len(sideVarSuffixes)+2)
	for _, suffix := range sideVarSuffixes {
		required = append(required, prefix+suffix)
	}
	required = append(required, engine.RequiredEnv()...)

	var missing []string
	for _, name := range required {
		if _, ok := e[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Endpoint{}, &MissingEnvError{Vars: missing}
	}

	ep := Endpoint{
		Host:     e[prefix+envHost],
		Port:     e[prefix+envPort],
		Database: e[prefix+envName],
		User:     e[prefix+envUser],
		Password: e[prefix+envPassword],
		Encrypt:  e[envEncrypt],
		SSLMode:  e[envSSLMode],
	}
	if _, err := strconv.ParseUint(ep.Port, 10, 16); err != nil {
		return Endpoint{}, errors.Errorf("invalid port %q in %s", ep.Port, prefix+envPort)
	}
	return ep, nil
}

// String hides the password.
func (ep Endpoint) String() string {
	return fmt.Sprintf("%s@%s:%s/%s", ep.User, ep.Host, ep.Port, ep.Database)
}
