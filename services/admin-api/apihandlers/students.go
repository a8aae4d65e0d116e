package apihandlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eduadmin/school-backend/pkg/accounts"
	"github.com/eduadmin/school-backend/pkg/apihelpers"
	mw "github.com/eduadmin/school-backend/pkg/apihelpers/middlewares"
	studentDB "github.com/eduadmin/school-backend/pkg/db/student"
)

type studentPatchReq struct {
	Name        string                 `json:"name"`
	Class       string                 `json:"class"`
	Status      string                 `json:"status"`
	ContactInfo *studentDB.ContactInfo `json:"contactInfo"`
	Guardian    *studentDB.Guardian    `json:"guardian"`
}

type addFeeRecordReq struct {
	FeeType     string    `json:"feeType"`
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"paymentDate"`
	Remarks     string    `json:"remarks"`
}

type addLibraryRecordReq struct {
	BookTitle string    `json:"bookTitle"`
	IssueDate time.Time `json:"issueDate"`
	DueDate   time.Time `json:"dueDate"`
}

type returnBookReq struct {
	ReturnDate *time.Time `json:"returnDate"`
	Fine       float64    `json:"fine"`
}

// AddStudentAPI mounts the student registry endpoints under /students. All
// three account kinds can access them once signed in.
func (h *HttpEndpoints) AddStudentAPI(rg *gin.RouterGroup) {
	grp := rg.Group("/students")
	grp.Use(mw.GetAndValidateSessionToken(h.tokenSignKey,
		accounts.ROLE_ADMIN, accounts.ROLE_LIBRARIAN, accounts.ROLE_STAFF))
	{
		grp.POST("", mw.RequirePayload(), h.addStudentHandl)
		grp.GET("", h.listStudentsHandl)
		grp.GET("/:id", h.getStudentHandl)
		grp.PUT("/:id", mw.RequirePayload(), h.updateStudentHandl)
		grp.DELETE("/:id", h.deleteStudentHandl)

		grp.POST("/:id/fees", mw.RequirePayload(), h.addFeeRecordHandl)
		grp.GET("/:id/fees", h.getFeesHandl)

		grp.POST("/:id/library", mw.RequirePayload(), h.addLibraryRecordHandl)
		grp.GET("/:id/library", h.getLibraryHistoryHandl)
		grp.PUT("/:id/library/:recordID/return", h.returnBookHandl)
	}
}

func studentStatusForError(err error) int {
	switch {
	case errors.Is(err, studentDB.ErrStudentNotFound),
		errors.Is(err, studentDB.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, studentDB.ErrDuplicateEmail):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func sendStudentError(c *gin.Context, err error) {
	sendError(c, studentStatusForError(err), err.Error())
}

func (h *HttpEndpoints) addStudentHandl(c *gin.Context) {
	var student studentDB.Student
	if err := c.ShouldBindJSON(&student); err != nil {
		sendError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if student.Name == "" || student.ContactInfo.Email == "" {
		sendError(c, http.StatusBadRequest, "name and contact email are required")
		return
	}

	id, err := h.studentDBConn.AddStudent(c.Request.Context(), student)
	if err != nil {
		sendStudentError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, "Student added.", gin.H{"id": id})
}

func (h *HttpEndpoints) listStudentsHandl(c *gin.Context) {
	query, err := apihelpers.ParsePaginatedQueryFromCtx(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, "invalid query")
		return
	}

	students, total, err := h.studentDBConn.GetStudents(
		c.Request.Context(), query.Filter, query.Sort, query.Page, query.Limit)
	if err != nil {
		sendStudentError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, "Students fetched.", gin.H{
		"students": students,
		"pagination": gin.H{
			"page":  query.Page,
			"limit": query.Limit,
			"total": total,
		},
	})
}

func (h *HttpEndpoints) getStudentHandl(c *gin.Context) {
	student, err := h.studentDBConn.GetStudentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendStudentError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Student fetched.", student)
}

func (h *HttpEndpoints) updateStudentHandl(c *gin.Context) {
	var req studentPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	student, err := h.studentDBConn.UpdateStudent(c.Request.Context(), c.Param("id"), studentDB.StudentPatch{
		Name:        req.Name,
		Class:       req.Class,
		Status:      req.Status,
		ContactInfo: req.ContactInfo,
		Guardian:    req.Guardian,
	})
	if err != nil {
		sendStudentError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Student updated.", student)
}

func (h *HttpEndpoints) deleteStudentHandl(c *gin.Context) {
	if err := h.studentDBConn.DeleteStudent(c.Request.Context(), c.Param("id")); err != nil {
		sendStudentError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Student deleted.", nil)
}

func (h *HttpEndpoints) addFeeRecordHandl(c *gin.Context) {
	studentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "invalid student id")
		return
	}

	var req addFeeRecordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.FeeType == "" || req.Amount <= 0 {
		sendError(c, http.StatusBadRequest, "feeType and a positive amount are required")
		return
	}

	// fail early when the student does not exist
	if _, err := h.studentDBConn.GetStudentByID(c.Request.Context(), c.Param("id")); err != nil {
		sendStudentError(c, err)
		return
	}

	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	id, err := h.studentDBConn.AddFeeRecord(c.Request.Context(), studentDB.FeeRecord{
		StudentID:   studentID,
		FeeType:     req.FeeType,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Remarks:     req.Remarks,
	})
	if err != nil {
		sendStudentError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, "Fee record added.", gin.H{"id": id})
}

func (h *HttpEndpoints) getFeesHandl(c *gin.Context) {
	records, err := h.studentDBConn.GetFeesForStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendStudentError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Fee history fetched.", records)
}

func (h *HttpEndpoints) addLibraryRecordHandl(c *gin.Context) {
	studentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "invalid student id")
		return
	}

	var req addLibraryRecordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.BookTitle == "" {
		sendError(c, http.StatusBadRequest, "bookTitle is required")
		return
	}

	if _, err := h.studentDBConn.GetStudentByID(c.Request.Context(), c.Param("id")); err != nil {
		sendStudentError(c, err)
		return
	}

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = issueDate.AddDate(0, 0, 14)
	}

	id, err := h.studentDBConn.AddLibraryRecord(c.Request.Context(), studentDB.LibraryRecord{
		StudentID: studentID,
		BookTitle: req.BookTitle,
		IssueDate: issueDate,
		DueDate:   dueDate,
	})
	if err != nil {
		sendStudentError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, "Library record added.", gin.H{"id": id})
}

func (h *HttpEndpoints) getLibraryHistoryHandl(c *gin.Context) {
	records, err := h.studentDBConn.GetLibraryHistoryForStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendStudentError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Library history fetched.", records)
}

func (h *HttpEndpoints) returnBookHandl(c *gin.Context) {
	var req returnBookReq
	// body is optional, defaults apply when absent
	_ = c.ShouldBindJSON(&req)

	returnDate := time.Now()
	if req.ReturnDate != nil {
		returnDate = *req.ReturnDate
	}

	err := h.studentDBConn.MarkLibraryRecordReturned(c.Request.Context(), c.Param("recordID"), returnDate, req.Fine)
	if err != nil {
		sendStudentError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Book marked as returned.", nil)
}
