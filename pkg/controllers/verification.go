package controllers

import (
	"net/http"

	"fonegitim-api-io/api/internal/auth"
	"fonegitim-api-io/api/internal/common"
	"fonegitim-api-io/api/pkg/models"
	"fonegitim-api-io/api/pkg/services"
	"fonegitim-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VerificationController struct {
	verificationService services.VerificationService
}

// InitVerificationController creates a verification controller with injected services
func InitVerificationController(verificationService services.VerificationService) *VerificationController {
	return &VerificationController{
		verificationService: verificationService,
	}
}

// GetTierRequirements handles GET /verification/tiers/:tier
// Public UI hint only; the authoritative gate runs server-side at submit.
func (vc *VerificationController) GetTierRequirements() gin.HandlerFunc {
	return func(c *gin.Context) {
		tier := models.VerificationTier(c.Param("tier"))
		if !models.KnownTier(tier) {
			util.HandleError(c, http.StatusUnprocessableEntity, errors.Errorf("unknown tier %q", tier))
			return
		}

		util.HandleSuccess(c, http.StatusOK, "successful", gin.H{
			"tier":     tier,
			"required": models.RequiredDocuments(tier),
			"badge":    models.BadgeFor(tier),
		})
	}
}

// StartVerification handles POST /verification
func (vc *VerificationController) StartVerification() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		userID, err := MyId(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		var req models.StartVerificationRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		if err := common.Validate.Struct(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		verification, err := vc.verificationService.StartVerification(ctx, userID, req.Tier)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "verification draft created", verification)
	}
}

// GetMyVerification handles GET /verification
func (vc *VerificationController) GetMyVerification() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		userID, err := MyId(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		verification, err := vc.verificationService.GetForUser(ctx, userID)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		eligibility := models.SubmissionEligibility(verification.Tier, verification.Documents)
		util.HandleSuccessMeta(c, http.StatusOK, "successful", verification, eligibility)
	}
}

// UploadDocument handles POST /verification/:verificationid/documents
// Multipart form: file, docType and expectedVersion fields. The file goes to
// the storage collaborator; only its opaque path lands on the record.
func (vc *VerificationController) UploadDocument() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		verificationID, userID, err := VerificationIdAndMyId(c)
		if err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		docType := models.DocumentType(c.PostForm("docType"))
		expectedVersion, err := parseVersion(c.PostForm("expectedVersion"))
		if err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		req := models.AppendDocumentRequest{DocType: docType, ExpectedVersion: expectedVersion}
		if err := common.Validate.Struct(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, errors.Wrap(err, "document file is required"))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}
		defer file.Close()

		uploadRes, err := util.UploadDocument(file)
		if err != nil {
			util.HandleError(c, http.StatusInternalServerError, errors.Wrap(err, "document upload failed"))
			return
		}

		verification, err := vc.verificationService.AppendDocument(ctx, verificationID, userID, expectedVersion, docType, uploadRes.PublicID)
		if err != nil {
			// The record was not touched; drop the orphaned upload.
			if _, cleanupErr := util.DestroyDocument(uploadRes.PublicID); cleanupErr != nil {
				util.LogError("failed to clean up orphaned document upload", cleanupErr)
			}
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "document attached", verification)
	}
}

// Submit handles POST /verification/:verificationid/submit
func (vc *VerificationController) Submit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		verificationID, userID, err := VerificationIdAndMyId(c)
		if err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		var req models.SubmitVerificationRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		submit := services.SubmitContext{
			ExpectedVersion: req.ExpectedVersion,
			OriginCountry:   c.GetHeader("CF-IPCountry"),
		}

		verification, err := vc.verificationService.Submit(ctx, verificationID, userID, submit)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "verification submitted for review", verification)
	}
}

// ListPendingVerifications handles GET /admin/verifications
func (vc *VerificationController) ListPendingVerifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		pagination := GetPaginationArgs(c)
		verifications, count, err := vc.verificationService.ListPending(ctx, pagination)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		meta := util.Pagination{Limit: pagination.Limit, Skip: pagination.Skip, Count: count}
		util.HandleSuccessMeta(c, http.StatusOK, "successful", verifications, meta)
	}
}

// GetVerification handles GET /admin/verifications/:verificationid
func (vc *VerificationController) GetVerification() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		verificationID, err := primitive.ObjectIDFromHex(c.Param("verificationid"))
		if err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		verification, err := vc.verificationService.GetByID(ctx, verificationID)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "successful", verification)
	}
}

// Review handles PUT /admin/verifications/:verificationid
func (vc *VerificationController) Review() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		verificationID, err := primitive.ObjectIDFromHex(c.Param("verificationid"))
		if err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		session, err := auth.GetSessionAuto(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		var req models.ReviewVerificationRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		if err := common.Validate.Struct(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		verification, err := vc.verificationService.Review(ctx, verificationID, session.UserId, req)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "review recorded", verification)
	}
}
