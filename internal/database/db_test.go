package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMySQLDSN(t *testing.T) {
	assert.Equal(t,
		"shop@tcp(db:3306)/store?charset=utf8mb4&parseTime=true&loc=UTC",
		MySQLDSN("shop", "", "db", "3306", "store"))
	assert.Equal(t,
		"shop:pw@tcp(db:3306)/store?charset=utf8mb4&parseTime=true&loc=UTC",
		MySQLDSN("shop", "pw", "db", "3306", "store"))
}
