package store

import "ckryptbit/internal/domain/models"

// seedProducts is the mock catalog installed on first run, when no
// product document exists yet.
func seedProducts() []models.Product {
	return []models.Product{
		{
			ID:          "prod_pentest_basic",
			Name:        "Perimeter Recon Scan",
			Description: "Simulated external reconnaissance of one target host, with a summary report.",
			Price:       149.00,
			ProductType: models.ProductService,
			ServiceConfig: &models.ServiceConfig{
				RequiresTargetInfo: true,
			},
		},
		{
			ID:          "prod_pentest_full",
			Name:        "Full Spectrum Pentest Simulation",
			Description: "Scripted end-to-end assessment: perimeter scan, exploit simulation, adaptive-defense modeling, full report.",
			Price:       499.00,
			ProductType: models.ProductService,
			ServiceConfig: &models.ServiceConfig{
				RequiresTargetInfo: true,
			},
		},
		{
			ID:          "prod_pentest_express",
			Name:        "Express Security Checkup",
			Description: "Quick scripted assessment with a generic scope, no target details needed.",
			Price:       49.00,
			ProductType: models.ProductService,
			ServiceConfig: &models.ServiceConfig{
				RequiresTargetInfo: false,
			},
		},
		{
			ID:          "prod_guide_hardening",
			Name:        "Server Hardening Playbook",
			Description: "AI-generated hardening guide covering SSH, TLS, firewall, and logging baselines.",
			Price:       19.00,
			ProductType: models.ProductDigital,
			DigitalAssetConfig: &models.DigitalAssetConfig{
				GenerationPrompt: "Write a practical server hardening playbook covering SSH configuration, TLS setup, firewall rules, and centralized logging. Use Markdown with clear sections and concrete commands.",
				OutputFormat:     "markdown",
			},
		},
		{
			ID:          "prod_policy_pack",
			Name:        "Security Policy Starter Pack",
			Description: "AI-generated password, access-control, and incident-response policy templates.",
			Price:       29.00,
			ProductType: models.ProductDigital,
			DigitalAssetConfig: &models.DigitalAssetConfig{
				GenerationPrompt: "Draft three concise security policy templates: password policy, access control policy, and incident response plan. Plain text, ready to adapt.",
				OutputFormat:     "text",
			},
		},
	}
}
