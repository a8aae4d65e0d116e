package apihandlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduadmin/school-backend/pkg/accounts"
	studentDB "github.com/eduadmin/school-backend/pkg/db/student"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	accountServices  map[string]*accounts.Service
	studentDBConn    *studentDB.StudentDBService
	tokenSignKey     string
	tokenExpiresIn   time.Duration
	useSecureCookies bool
}

func NewHTTPHandler(
	tokenSignKey string,
	tokenExpiresIn time.Duration,
	accountServices map[string]*accounts.Service,
	studentDBConn *studentDB.StudentDBService,
	useSecureCookies bool,
) *HttpEndpoints {
	return &HttpEndpoints{
		tokenSignKey:     tokenSignKey,
		tokenExpiresIn:   tokenExpiresIn,
		accountServices:  accountServices,
		studentDBConn:    studentDBConn,
		useSecureCookies: useSecureCookies,
	}
}
