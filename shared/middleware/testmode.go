package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// IsTestHeader routes a request to the *Test tables when set to a true value.
const IsTestHeader = "Is-Test"

const isTestKey = "isTest"

func TestModeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		isTest, err := strconv.ParseBool(c.GetHeader(IsTestHeader))
		c.Set(isTestKey, err == nil && isTest)
		c.Next()
	}
}

// IsTest falls back to reading the header when the middleware did not run.
func IsTest(c *gin.Context) bool {
	if v, ok := c.Get(isTestKey); ok {
		return v.(bool)
	}
	isTest, err := strconv.ParseBool(c.GetHeader(IsTestHeader))
	return err == nil && isTest
}
