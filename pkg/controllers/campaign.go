package controllers

import (
	"net/http"

	"fonegitim-api-io/api/internal/common"
	"fonegitim-api-io/api/pkg/models"
	"fonegitim-api-io/api/pkg/services"
	"fonegitim-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CampaignController struct {
	campaignService services.CampaignService
}

// InitCampaignController creates a campaign controller with injected services
func InitCampaignController(campaignService services.CampaignService) *CampaignController {
	return &CampaignController{
		campaignService: campaignService,
	}
}

// CreateCampaign handles POST /campaigns
func (cc *CampaignController) CreateCampaign() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		userID, err := MyId(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		var req models.CreateCampaignRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		if err := common.Validate.Struct(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		campaignID, err := cc.campaignService.CreateCampaign(ctx, userID, req)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "campaign created", gin.H{"campaignId": campaignID})
	}
}

// UpdateCampaign handles PUT /campaigns/:campaignid
func (cc *CampaignController) UpdateCampaign() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		campaignID, err := primitive.ObjectIDFromHex(c.Param("campaignid"))
		if err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		userID, err := MyId(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		var req models.UpdateCampaignRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		if err := cc.campaignService.UpdateCampaign(ctx, campaignID, userID, req); err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "campaign updated", nil)
	}
}

// PublishCampaign handles POST /campaigns/:campaignid/publish
func (cc *CampaignController) PublishCampaign() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		campaignID, err := primitive.ObjectIDFromHex(c.Param("campaignid"))
		if err != nil {
			util.HandleError(c, http.StatusUnprocessableEntity, err)
			return
		}

		userID, err := MyId(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		if err := cc.campaignService.PublishCampaign(ctx, campaignID, userID); err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "campaign published", nil)
	}
}

// GetCampaign handles GET /campaigns/:campaignid (id or slug)
func (cc *CampaignController) GetCampaign() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		campaign, err := cc.campaignService.GetCampaign(ctx, c.Param("campaignid"))
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "successful", campaign)
	}
}

// GetCampaigns handles GET /campaigns
func (cc *CampaignController) GetCampaigns() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout()
		defer cancel()

		pagination := GetPaginationArgs(c)
		campaigns, count, err := cc.campaignService.GetCampaigns(ctx, pagination)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		meta := util.Pagination{Limit: pagination.Limit, Skip: pagination.Skip, Count: count}
		util.HandleSuccessMeta(c, http.StatusOK, "successful", campaigns, meta)
	}
}
