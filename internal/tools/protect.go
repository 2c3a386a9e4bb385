package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/LuiccianDev/mcp-word-office/internal/protection"
	"github.com/LuiccianDev/mcp-word-office/internal/response"
	"github.com/LuiccianDev/mcp-word-office/internal/validation"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

func protectionTools(deps Deps) []Tool {
	resolve := validation.Resolver(deps.Resolve)
	wrap := func(h validation.Handler) validation.Handler {
		return validation.Chain(h,
			validation.RequireDocument(resolve, "filename"),
			validation.RequireWritable(resolve, "filename"),
		)
	}

	return []Tool{
		{
			Def: mcp.NewTool("word_protect_document",
				mcp.WithDescription("Password-protect a document by encrypting its content in place."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to protect")),
				mcp.WithString("password", mcp.Required(), mcp.Description("Password required to open the document again")),
			),
			Handler: wrap(protectDocument(deps)),
		},
		{
			// No document-validity precondition: a protected file is an
			// encrypted envelope, not a readable package.
			Def: mcp.NewTool("word_unprotect_document",
				mcp.WithDescription("Remove password protection and restore the plain document content."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to unprotect")),
				mcp.WithString("password", mcp.Required(), mcp.Description("Password the document was protected with")),
			),
			Handler: validation.Chain(unprotectDocument(deps), validation.RequireWritable(resolve, "filename")),
		},
		{
			Def: mcp.NewTool("word_add_restricted_editing",
				mcp.WithDescription("Restrict editing to the named sections, guarded by a password. The content stays readable."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to restrict")),
				mcp.WithString("password", mcp.Required(), mcp.Description("Password that lifts the restriction")),
				mcp.WithArray("editable_sections", mcp.Required(), mcp.Description("Section names that remain editable"),
					mcp.Items(map[string]any{"type": "string"})),
			),
			Handler: wrap(addRestrictedEditing(deps)),
		},
		{
			Def: mcp.NewTool("word_add_digital_signature",
				mcp.WithDescription("Sign the document content: record a content hash and append a visible signature line."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to sign")),
				mcp.WithString("signer_name", mcp.Required(), mcp.Description("Name recorded in the signature")),
				mcp.WithString("reason", mcp.Description("Optional signing reason")),
			),
			Handler: wrap(addDigitalSignature(deps)),
		},
		{
			Def: mcp.NewTool("word_verify_document",
				mcp.WithDescription("Report protection state and check recorded signatures against the current content."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to verify")),
				mcp.WithString("password", mcp.Description("Optional password to check against the protection record")),
			),
			Handler: validation.Chain(verifyDocument(deps), validation.RequireDocument(resolve, "filename")),
		},
	}
}

func protectDocument(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "protect document"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		password, ok := validation.StringArg(req, "password")
		if !ok || password == "" {
			return worderr.Handle(worderr.Validation("password must not be empty"), filename, op).MCP(), nil
		}

		if err := protection.Protect(path, password); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		deps.Log.Info().Str("path", path).Msg("document protected")
		return response.Success("Document %s is now password protected", filename).MCP(), nil
	}
}

func unprotectDocument(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "unprotect document"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		password, ok := validation.StringArg(req, "password")
		if !ok || password == "" {
			return worderr.Handle(worderr.Validation("password must not be empty"), filename, op).MCP(), nil
		}

		if err := protection.Unprotect(path, password); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		deps.Log.Info().Str("path", path).Msg("document unprotected")
		return response.Success("Password protection removed from %s", filename).MCP(), nil
	}
}

func addRestrictedEditing(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "add restricted editing"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		password, ok := validation.StringArg(req, "password")
		if !ok || password == "" {
			return worderr.Handle(worderr.Validation("password must not be empty"), filename, op).MCP(), nil
		}
		sections, ok := validation.StringSliceArg(req, "editable_sections")
		if !ok || len(sections) == 0 {
			return worderr.Handle(worderr.Validation("editable_sections must be a non-empty list"), filename, op).MCP(), nil
		}

		if err := protection.RestrictEditing(path, password, sections); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		return response.Success("Editing of %s restricted to %d section(s)", filename, len(sections)).
			WithDetails(map[string]any{"editable_sections": sections}).MCP(), nil
	}
}

func addDigitalSignature(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "add digital signature"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		signer, ok := validation.StringArg(req, "signer_name")
		if !ok || signer == "" {
			return worderr.Handle(worderr.Validation("signer_name must not be empty"), filename, op).MCP(), nil
		}
		reason, _ := validation.StringArg(req, "reason")

		sig, err := protection.Sign(path, signer, reason)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		deps.Log.Info().Str("path", path).Str("signer", signer).Msg("document signed")
		return response.Success("Document %s signed by %s", filename, signer).
			WithDetails(map[string]any{"signature": sig}).MCP(), nil
	}
}

func verifyDocument(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "verify document"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		res, err := protection.Verify(path)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		details := map[string]any{"verification": res}
		if password, ok := validation.StringArg(req, "password"); ok && password != "" {
			match, err := protection.CheckPassword(path, password)
			if err != nil {
				return worderr.Handle(err, filename, op).MCP(), nil
			}
			details["password_matches"] = match
		}
		return response.Success("Verification report for %s", filename).WithDetails(details).MCP(), nil
	}
}
